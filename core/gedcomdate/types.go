// Package gedcomdate interpreta les frases de data dels fitxers GEDCOM
// ("ABT 1850", "BET 1820 AND 1825", "@#DJULIAN@ 3 MAR 1700"...) i les
// converteix en valors normalitzats i comparables.
package gedcomdate

import "strings"

// DateType és el calendari en què està escrita la data.
type DateType int

const (
	Gregorian DateType = iota
	Julian
	Hebrew
	French
	Roman
	Unknown
)

var dateTypeEscapes = []struct {
	escape string
	dt     DateType
}{
	{"DGREGORIAN", Gregorian},
	{"DJULIAN", Julian},
	{"DHEBREW", Hebrew},
	{"DFRENCH R", French},
	{"DFRENCH", French},
	{"DROMAN", Roman},
	{"DUNKNOWN", Unknown},
}

func (t DateType) String() string {
	switch t {
	case Gregorian:
		return "GREGORIAN"
	case Julian:
		return "JULIAN"
	case Hebrew:
		return "HEBREW"
	case French:
		return "FRENCH R"
	case Roman:
		return "ROMAN"
	default:
		return "UNKNOWN"
	}
}

// Escape retorna la seqüència "@#D...@" del calendari.
func (t DateType) Escape() string {
	return "@#D" + t.String() + "@"
}

// dateTypeFromEscape resol el nom de dins de "@#...@". Els noms desconeguts
// tornen Gregorian.
func dateTypeFromEscape(name string) DateType {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, e := range dateTypeEscapes {
		if name == e.escape {
			return e.dt
		}
	}
	return Gregorian
}

// DatePeriod qualifica la certesa o l'abast d'una data.
type DatePeriod int

const (
	Exact DatePeriod = iota
	After
	Before
	Between
	About
	Calculated
	Estimate
	Interpretation
	Range
)

func (p DatePeriod) String() string {
	switch p {
	case After:
		return "After"
	case Before:
		return "Before"
	case Between:
		return "Between"
	case About:
		return "About"
	case Calculated:
		return "Calculated"
	case Estimate:
		return "Estimate"
	case Interpretation:
		return "Interpretation"
	case Range:
		return "Range"
	default:
		return "Exact"
	}
}

// twoPart indica si el període porta dues dates (BET/AND, FROM/TO).
func (p DatePeriod) twoPart() bool {
	return p == Between || p == Range
}
