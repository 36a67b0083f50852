package gedcomdate

import (
	"strconv"
	"strings"
)

var (
	shortMonths = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
	longMonths  = []string{"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE", "JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER"}
	// variants amb punt i abreviatures que fan servir alguns programes
	punctuatedMonths = []string{"JAN.", "FEB.", "MAR.", "APR.", "MAY.", "JUN.", "JUL.", "AUG.", "SEP.", "OCT.", "NOV.", "DEC."}
	altShortMonths   = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUNE", "JULY", "AUG", "SEPT", "OCT", "NOV", "DEC"}
	altPunctMonths   = []string{"JAN.", "FEB.", "MAR.", "APR.", "MAY.", "JUNE.", "JULY.", "AUG.", "SEPT.", "OCT.", "NOV.", "DEC."}
	frenchMonths     = []string{"VEND", "BRUM", "FRIM", "NIVO", "PLUV", "VENT", "GERM", "FLOR", "PRAI", "MESS", "THER", "FRUC", "COMP"}
	hebrewMonths     = []string{"TSH", "CSH", "KSL", "TVT", "SHV", "ADR", "ADS", "NSN", "IYR", "SVN", "TMZ", "AAV", "ELL"}
)

var gregorianMonthSearchOrder = [][]string{
	shortMonths, longMonths, punctuatedMonths, altShortMonths, altPunctMonths, frenchMonths, hebrewMonths,
}

var hebrewMonthSearchOrder = [][]string{
	hebrewMonths, shortMonths, longMonths, punctuatedMonths, altShortMonths, altPunctMonths, frenchMonths,
}

// resolveMonth accepta un número o un nom de mes. La primera taula que el
// conté guanya.
func resolveMonth(cal Calendar, token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, n > 0
	}
	upper := strings.ToUpper(token)
	for _, table := range cal.monthTables() {
		for i, name := range table {
			if upper == name {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// MonthName retorna l'abreviatura GEDCOM del mes pel calendari donat.
func MonthName(t DateType, month int) string {
	table := shortMonths
	switch t {
	case Hebrew:
		table = hebrewMonths
	case French:
		table = frenchMonths
	}
	if month < 1 || month > len(table) {
		return ""
	}
	return table[month-1]
}
