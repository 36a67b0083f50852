package gedcomdate

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotSupported es retorna per calendaris sense implementació (francès
// republicà i romà). No hi ha cap conversió segura per a aquestes dates.
var ErrNotSupported = errors.New("calendari no implementat")

// Calendar converteix dia/mes/any d'un calendari a una data gregoriana
// proléptica, que és la forma comparable que guardem.
type Calendar interface {
	MonthsInYear(year int) int
	DaysInMonth(year, month int) int
	ToTime(year, month, day int) time.Time
	// monthTables retorna les taules de noms de mes en ordre de cerca.
	monthTables() [][]string
}

// CalendarFor retorna el calendari per un DateType. Unknown no té calendari
// però tampoc és un error: la data es guarda sense normalitzar.
func CalendarFor(t DateType) (Calendar, error) {
	switch t {
	case Gregorian:
		return gregorianCalendar{}, nil
	case Julian:
		return julianCalendar{}, nil
	case Hebrew:
		return hebrewCalendar{}, nil
	case Unknown:
		return nil, nil
	default:
		return nil, errors.Wrapf(ErrNotSupported, "calendari %s", t)
	}
}

type gregorianCalendar struct{}

func (gregorianCalendar) MonthsInYear(int) int { return 12 }

func (gregorianCalendar) DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func (gregorianCalendar) ToTime(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (gregorianCalendar) monthTables() [][]string {
	return gregorianMonthSearchOrder
}

type julianCalendar struct{}

func (julianCalendar) MonthsInYear(int) int { return 12 }

func (julianCalendar) DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func (julianCalendar) ToTime(year, month, day int) time.Time {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	jdn := day + (153*m+2)/5 + 365*y + floorDiv(y, 4) - 32083
	return jdnToTime(jdn)
}

func (julianCalendar) monthTables() [][]string {
	return gregorianMonthSearchOrder
}

// hebrewCalendar numera els mesos com GEDCOM: 1=TSH ... 6=ADR, 7=ADS, 8=NSN ... 13=ELL.
// Internament fa servir la numeració clàssica on 1=Nisan i 7=Tishri.
type hebrewCalendar struct{}

const hebrewEpochJDN = 347996

var gedcomToHebrewMonth = [14]int{0, 7, 8, 9, 10, 11, 12, 13, 1, 2, 3, 4, 5, 6}

func hebrewLeap(year int) bool {
	return (year*7+1)%19 < 7
}

func hebrewYearMonths(year int) int {
	if hebrewLeap(year) {
		return 13
	}
	return 12
}

func hebrewDelay1(year int) int {
	months := (235*year - 234) / 19
	parts := 12084 + 13753*months
	day := months*29 + parts/25920
	if (3*(day+1))%7 < 3 {
		day++
	}
	return day
}

func hebrewDelay2(year int) int {
	last := hebrewDelay1(year - 1)
	present := hebrewDelay1(year)
	next := hebrewDelay1(year + 1)
	if next-present == 356 {
		return 2
	}
	if present-last == 382 {
		return 1
	}
	return 0
}

func hebrewYearDays(year int) int {
	return hebrewJDN(year+1, 7, 1) - hebrewJDN(year, 7, 1)
}

func hebrewMonthDays(year, month int) int {
	switch {
	case month == 2 || month == 4 || month == 6 || month == 10 || month == 13:
		return 29
	case month == 12 && !hebrewLeap(year):
		return 29
	case month == 8 && hebrewYearDays(year)%10 != 5:
		return 29
	case month == 9 && hebrewYearDays(year)%10 == 3:
		return 29
	}
	return 30
}

func hebrewJDN(year, month, day int) int {
	jdn := hebrewEpochJDN + hebrewDelay1(year) + hebrewDelay2(year) + day + 1
	if month < 7 {
		for m := 7; m <= hebrewYearMonths(year); m++ {
			jdn += hebrewMonthDays(year, m)
		}
		for m := 1; m < month; m++ {
			jdn += hebrewMonthDays(year, m)
		}
	} else {
		for m := 7; m < month; m++ {
			jdn += hebrewMonthDays(year, m)
		}
	}
	return jdn
}

func (hebrewCalendar) MonthsInYear(int) int { return 13 }

func (hebrewCalendar) DaysInMonth(year, month int) int {
	if month < 1 || month > 13 {
		return 30
	}
	internal := gedcomToHebrewMonth[month]
	// ADS només existeix en anys de traspàs
	if internal == 13 && !hebrewLeap(year) {
		return 0
	}
	return hebrewMonthDays(year, internal)
}

func (hebrewCalendar) ToTime(year, month, day int) time.Time {
	return jdnToTime(hebrewJDN(year, gedcomToHebrewMonth[month], day))
}

func (hebrewCalendar) monthTables() [][]string {
	return hebrewMonthSearchOrder
}

func jdnToTime(jdn int) time.Time {
	a := jdn + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)
	day := e - floorDiv(153*m+2, 5) + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
