package gedcomdate

import (
	"math"
	"strings"
	"time"
)

// Compare ordena per DateTime1, DateTime2, Date1 i Date2. Els nils van
// primer, tant per la data sencera com per cada valor normalitzat.
func Compare(a, b *Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := compareTimes(a.DateTime1(), b.DateTime1()); c != 0 {
		return c
	}
	if c := compareTimes(a.DateTime2(), b.DateTime2()); c != 0 {
		return c
	}
	if c := strings.Compare(a.date1, b.date1); c != 0 {
		return c
	}
	return strings.Compare(a.date2, b.date2)
}

// Equal és cert si Compare és 0. Dos nils són iguals.
func Equal(a, b *Date) bool {
	return Compare(a, b) == 0
}

func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

const matchAttemptCredit = 100.0

// compatiblePeriods: iguals, o BET/FROM que són intercanviables.
func compatiblePeriods(a, b DatePeriod) bool {
	return a == b || (a.twoPart() && b.twoPart())
}

// IsMatch puntua (0-100) la semblança de dues dates. Text i període
// idèntics donen 100; calendaris o períodes incompatibles donen 0.
func IsMatch(a, b *Date) float64 {
	if a == nil || b == nil {
		return 0
	}
	if a.dateType == b.dateType && a.period == b.period &&
		strings.EqualFold(a.date1, b.date1) && strings.EqualFold(a.date2, b.date2) {
		return 100
	}
	if a.dateType != b.dateType || !compatiblePeriods(a.period, b.period) {
		return 0
	}

	total := matchAttemptCredit
	weights := 1.0

	total += componentScore(a.DateTime1(), b.DateTime1(), a.PartsParsed1(), b.PartsParsed1())
	weights++

	if a.date2 != "" || b.date2 != "" {
		total += componentScore(a.DateTime2(), b.DateTime2(), a.PartsParsed2(), b.PartsParsed2())
		weights++
	}

	score := total / weights
	return math.Max(0, math.Min(100, score))
}

// componentScore compara any, mes i dia (només les peces que totes dues
// dates tenen) i ho escala per parts/3.
func componentScore(a, b *time.Time, partsA, partsB int) float64 {
	if a == nil || b == nil {
		return 0
	}
	parts := min(partsA, partsB)
	if parts <= 0 {
		return 0
	}
	yearDiff := math.Abs(float64(a.Year() - b.Year()))
	sum := math.Max(0, 100-yearDiff*10)
	if parts >= 2 {
		monthDiff := math.Abs(float64(int(a.Month()) - int(b.Month())))
		sum += math.Max(0, 100-monthDiff*100/12)
	}
	if parts >= 3 {
		dayDiff := math.Abs(float64(a.Day() - b.Day()))
		sum += math.Max(0, 100-dayDiff*100/31)
	}
	avg := sum / float64(parts)
	return avg * float64(parts) / 3
}
