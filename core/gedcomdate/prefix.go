package gedcomdate

import (
	"sort"
	"strings"
)

type periodPrefix struct {
	text   string
	period DatePeriod
	// toOnly marca "TO x" sense FROM: x és la segona data del rang
	toOnly bool
}

// Prefixos estàndard primer; la resta són variants vistes en fitxers reals.
// "NOT BEF" vol dir després i "NOT AFT" vol dir abans. BU. i BAP. són dates
// d'enterrament o bateig copiades a defunció o naixement.
var periodPrefixes = []periodPrefix{
	{text: "BEF ", period: Before},
	{text: "AFT ", period: After},
	{text: "BET ", period: Between},
	{text: "FROM ", period: Range},
	{text: "TO ", period: Range, toOnly: true},
	{text: "ABT ", period: About},
	{text: "EST ", period: Estimate},
	{text: "CAL ", period: Calculated},
	{text: "INT ", period: Interpretation},

	{text: "BEF.", period: Before},
	{text: "AFT.", period: After},
	{text: "BET.", period: Between},
	{text: "ABT.", period: About},
	{text: "EST.", period: Estimate},
	{text: "CAL.", period: Calculated},
	{text: "INT.", period: Interpretation},
	{text: "BEFORE ", period: Before},
	{text: "AFTER ", period: After},
	{text: "BETWEEN ", period: Between},
	{text: "ABOUT ", period: About},
	{text: "CIRCA ", period: About},
	{text: "CA.", period: About},
	{text: "C.", period: About},
	{text: "NOT BEFORE ", period: After},
	{text: "NOT BEF.", period: After},
	{text: "NOT BEF ", period: After},
	{text: "NOT AFTER ", period: Before},
	{text: "NOT AFT.", period: Before},
	{text: "NOT AFT ", period: Before},
	{text: "BU.", period: Calculated},
	{text: "BAP.", period: Calculated},
}

var sortedPeriodPrefixes = func() []periodPrefix {
	out := append([]periodPrefix(nil), periodPrefixes...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].text) > len(out[j].text)
	})
	return out
}()

// matchPeriod busca el prefix més llarg aplicable, sense distingir
// majúscules. Retorna el text sense el prefix.
func matchPeriod(text string) (DatePeriod, bool, string) {
	upper := strings.ToUpper(text)
	for _, p := range sortedPeriodPrefixes {
		if strings.HasPrefix(upper, p.text) {
			return p.period, p.toOnly, strings.TrimSpace(text[len(p.text):])
		}
	}
	return Exact, false, text
}

func periodPrefixText(p DatePeriod) string {
	switch p {
	case After:
		return "AFT"
	case Before:
		return "BEF"
	case Between:
		return "BET"
	case About:
		return "ABT"
	case Calculated:
		return "CAL"
	case Estimate:
		return "EST"
	case Interpretation:
		return "INT"
	case Range:
		return "FROM"
	}
	return ""
}
