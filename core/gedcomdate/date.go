package gedcomdate

import (
	"strconv"
	"strings"
	"time"
)

// Date és una data GEDCOM: calendari, període, el text de les dues
// components i, si s'han pogut interpretar, els seus valors normalitzats.
//
// Els valors normalitzats depenen només de date1, date2 i el calendari; es
// recalculen la primera vegada que es llegeixen després d'un canvi.
type Date struct {
	dateType DateType
	period   DatePeriod
	date1    string
	date2    string

	// Time ve del subtag TIME i no participa en la normalització.
	Time string
	// Phrase és el text entre parèntesis ("INT 1850 (cens)" o "(desconeguda)").
	Phrase string

	dirty        bool
	dateTime1    *time.Time
	dateTime2    *time.Time
	partsParsed1 int
	partsParsed2 int
	err          error
}

// Parse interpreta una frase de data. Mai falla: si no s'entén, el text es
// conserva a Date1 i DateTime1 queda nil.
func Parse(raw string) *Date {
	d := &Date{}
	d.SetPeriod(raw)
	return d
}

// ParseStrict és com Parse però retorna ErrNotSupported pels calendaris
// francès i romà.
func ParseStrict(raw string) (*Date, error) {
	d := Parse(raw)
	d.compute()
	return d, d.err
}

// SetPeriod torna a interpretar la data a partir del text. El període
// es reinicia a Exact abans de buscar el prefix.
func (d *Date) SetPeriod(raw string) {
	d.dateType = Gregorian
	d.period = Exact
	d.date1, d.date2, d.Phrase = "", "", ""

	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "@#") {
		if end := strings.Index(text[2:], "@"); end >= 0 {
			d.dateType = dateTypeFromEscape(text[2 : 2+end])
			text = strings.TrimSpace(text[2+end+1:])
		}
	}
	text = stripEscapes(text)

	period, toOnly, rest := matchPeriod(text)
	d.period = period
	rest, d.Phrase = splitPhrase(rest, period)
	if toOnly {
		d.date2 = rest
	} else {
		d.date1, d.date2 = splitComponents(rest, period)
	}
	d.dirty = true
}

// Period reconstrueix el text GEDCOM de la data.
func (d *Date) Period() string {
	var b strings.Builder
	if d.dateType != Gregorian {
		b.WriteString(d.dateType.Escape())
		b.WriteByte(' ')
	}
	switch d.period {
	case Between:
		b.WriteString("BET ")
		b.WriteString(d.date1)
		if d.date2 != "" {
			b.WriteString(" AND ")
			b.WriteString(d.date2)
		}
	case Range:
		if d.date1 != "" {
			b.WriteString("FROM ")
			b.WriteString(d.date1)
		}
		if d.date2 != "" {
			if d.date1 != "" {
				b.WriteByte(' ')
			}
			b.WriteString("TO ")
			b.WriteString(d.date2)
		}
	default:
		if p := periodPrefixText(d.period); p != "" {
			b.WriteString(p)
			b.WriteByte(' ')
		}
		b.WriteString(d.date1)
		if d.date2 != "" {
			b.WriteString(" AND ")
			b.WriteString(d.date2)
		}
	}
	if d.Phrase != "" {
		if strings.TrimSpace(b.String()) != "" {
			b.WriteByte(' ')
		}
		b.WriteString("(" + d.Phrase + ")")
	}
	return strings.TrimSpace(b.String())
}

func (d *Date) String() string { return d.Period() }

func (d *Date) DateType() DateType     { return d.dateType }
func (d *Date) DatePeriod() DatePeriod { return d.period }
func (d *Date) Date1() string          { return d.date1 }
func (d *Date) Date2() string          { return d.date2 }

func (d *Date) SetDateType(t DateType) {
	d.dateType = t
	d.dirty = true
}

func (d *Date) SetDatePeriod(p DatePeriod) {
	d.period = p
	d.dirty = true
}

func (d *Date) SetDate1(s string) {
	d.date1 = strings.TrimSpace(s)
	d.dirty = true
}

func (d *Date) SetDate2(s string) {
	d.date2 = strings.TrimSpace(s)
	d.dirty = true
}

func (d *Date) DateTime1() *time.Time {
	d.compute()
	return d.dateTime1
}

func (d *Date) DateTime2() *time.Time {
	d.compute()
	return d.dateTime2
}

func (d *Date) PartsParsed1() int {
	d.compute()
	return d.partsParsed1
}

func (d *Date) PartsParsed2() int {
	d.compute()
	return d.partsParsed2
}

// Err retorna ErrNotSupported si el calendari no té implementació.
func (d *Date) Err() error {
	d.compute()
	return d.err
}

// ISO retorna la primera data normalitzada com a "2006-01-02", o "" si no n'hi ha.
func (d *Date) ISO() string {
	t := d.DateTime1()
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func (d *Date) compute() {
	if !d.dirty {
		return
	}
	d.dirty = false
	d.dateTime1, d.dateTime2 = nil, nil
	d.partsParsed1, d.partsParsed2 = 0, 0
	d.err = nil

	cal, err := CalendarFor(d.dateType)
	if err != nil {
		d.err = err
		return
	}
	if cal == nil {
		return
	}
	d.dateTime1, d.partsParsed1 = parseComponent(cal, d.date1)
	d.dateTime2, d.partsParsed2 = parseComponent(cal, d.date2)

	if d.dateTime1 == nil && d.period == Exact && d.date2 == "" && d.dateType == Gregorian {
		if t, ok := parseNumericFallback(d.date1); ok {
			d.dateTime1 = &t
			d.partsParsed1 = 3
		}
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
}

func isConnective(tok string) bool {
	return strings.EqualFold(tok, "AND") || strings.EqualFold(tok, "TO")
}

// splitComponents separa "x AND y" / "x TO y". Amb més de quatre peces
// només es busca el connector si el període és BET o FROM; si no és a la
// posició 1 o 2 se suposa a la 3.
func splitComponents(text string, period DatePeriod) (string, string) {
	tokens := tokenize(text)
	switch {
	case len(tokens) == 3 && isConnective(tokens[1]):
		return tokens[0], tokens[2]
	case len(tokens) > 4 && period.twoPart():
		idx := 3
		if isConnective(tokens[1]) {
			idx = 1
		} else if isConnective(tokens[2]) {
			idx = 2
		}
		return strings.Join(tokens[:idx], " "), strings.Join(tokens[idx+1:], " ")
	}
	return text, ""
}

func splitPhrase(text string, period DatePeriod) (string, string) {
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		return "", strings.TrimSpace(text[1 : len(text)-1])
	}
	if period == Interpretation {
		if open := strings.Index(text, "("); open >= 0 {
			phrase := strings.TrimSuffix(text[open+1:], ")")
			return strings.TrimSpace(text[:open]), strings.TrimSpace(phrase)
		}
	}
	return text, ""
}

// stripEscapes treu escapes de calendari repetits dins d'un rang
// ("BET @#DJULIAN@ 1700 AND @#DJULIAN@ 1710").
func stripEscapes(text string) string {
	for {
		start := strings.Index(text, "@#")
		if start < 0 {
			return text
		}
		end := strings.Index(text[start+2:], "@")
		if end < 0 {
			return text
		}
		text = strings.TrimSpace(text[:start] + text[start+2+end+1:])
	}
}

func isBCMarker(tok string) bool {
	switch strings.ToUpper(tok) {
	case "BC", "B.C.", "BCE", "B.C":
		return true
	}
	return false
}

// parseComponent interpreta una data simple segons el nombre de peces:
// 1 any, 2 mes i any, 3 dia, mes i any. Retorna quantes peces s'han resolt.
func parseComponent(cal Calendar, text string) (*time.Time, int) {
	tokens := tokenize(strings.TrimSpace(text))
	if len(tokens) == 0 {
		return nil, 0
	}
	bc := false
	if n := len(tokens); n > 1 && isBCMarker(tokens[n-1]) {
		bc = true
		tokens = tokens[:n-1]
	}

	var dayTok, monthTok, yearTok string
	switch len(tokens) {
	case 1:
		yearTok = tokens[0]
	case 2:
		monthTok, yearTok = tokens[0], tokens[1]
	case 3:
		dayTok, monthTok, yearTok = tokens[0], tokens[1], tokens[2]
	default:
		return nil, 0
	}

	parts := 0
	year, yearOK := parseYear(yearTok)
	if yearOK {
		parts++
	}
	month, monthOK := 1, true
	if monthTok != "" {
		month, monthOK = resolveMonth(cal, monthTok)
		if monthOK {
			parts++
		}
	}
	day, dayOK := 1, true
	if dayTok != "" {
		day, dayOK = parseDay(dayTok)
		if dayOK {
			parts++
		}
	}
	if !yearOK || !monthOK || !dayOK {
		return nil, parts
	}
	if bc {
		year = 1 - year
	}

	// MM-DD-YYYY en lloc de DD-MM-YYYY
	if months := cal.MonthsInYear(year); month > months && dayTok != "" && day <= months {
		day, month = month, day
	}
	if month < 1 || month > cal.MonthsInYear(year) {
		return nil, parts
	}
	dim := cal.DaysInMonth(year, month)
	if dim == 0 {
		return nil, parts
	}
	if day > dim {
		day = dim
	}
	t := cal.ToTime(year, month, day)
	return &t, parts
}

func parseYear(tok string) (int, bool) {
	// "1980/81" -> 1980
	if head, tail, ok := strings.Cut(tok, "/"); ok {
		if len(head) < 3 || len(head) > 4 || len(tail) < 1 || len(tail) > 2 || !allDigits(head) || !allDigits(tail) {
			return 0, false
		}
		tok = head
	}
	y, err := strconv.Atoi(tok)
	if err != nil || y <= 0 || y > 9999 {
		return 0, false
	}
	return y, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseDay(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

var numericLayouts = []string{
	"2-1-2006", "1-2-2006", "2006-1-2",
	"2.1.2006", "1.2.2006", "2006.1.2",
}

func parseNumericFallback(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
