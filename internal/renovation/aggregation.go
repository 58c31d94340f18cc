package renovation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// Predicate selects records for aggregation
type Predicate func(models.TrackSegment) bool

// InSection matches records of one section
func InSection(section string) Predicate {
	return func(r models.TrackSegment) bool {
		return r.Section == section
	}
}

// OnTrack matches records of one track
func OnTrack(track int) Predicate {
	return func(r models.TrackSegment) bool {
		return r.Track == track
	}
}

// BeforeYear matches records forecast strictly before year
func BeforeYear(year int) Predicate {
	return func(r models.TrackSegment) bool {
		return r.ForecastYear < year
	}
}

// BetweenYears matches records forecast in from..to, both inclusive
func BetweenYears(from, to int) Predicate {
	return func(r models.TrackSegment) bool {
		return r.ForecastYear >= from && r.ForecastYear <= to
	}
}

// All matches records accepted by every predicate. No predicates match everything.
func All(preds ...Predicate) Predicate {
	return func(r models.TrackSegment) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}

// SumLength sums the length in meters of the records accepted by pred.
// A nil pred accepts every record. Records are summed in input order.
func SumLength(records []models.TrackSegment, pred Predicate) float64 {
	var sum float64
	for _, r := range records {
		if pred == nil || pred(r) {
			sum += r.LengthMeters()
		}
	}
	return sum
}

// Percentage returns 100*part/total. It reports false when total is zero or
// not finite, in which case the percentage is undefined and 0 is returned.
func Percentage(part, total float64) (float64, bool) {
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, false
	}
	return 100 * part / total, true
}

// RoundPercent rounds p to places decimals, halves away from zero.
// Non-finite values are returned unchanged.
func RoundPercent(p float64, places int32) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return p
	}
	return decimal.NewFromFloat(p).Round(places).InexactFloat64()
}

// NewFigure pairs part with its percentage of total
func NewFigure(part, total float64, places int32) models.AggregateFigure {
	pct, ok := Percentage(part, total)
	return models.AggregateFigure{
		Meters:  part,
		Percent: pct,
		Display: RoundPercent(pct, places),
		Defined: ok,
	}
}
