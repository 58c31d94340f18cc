package renovation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

var (
	ErrMissingSection  = errors.New("missing section")
	ErrInvalidTrack    = errors.New("invalid track")
	ErrInvalidPosition = errors.New("invalid km-post")
	ErrReversedRange   = errors.New("start km-post not before end km-post")
	ErrInvalidYear     = errors.New("invalid forecast year")
)

// Validate checks a record before it enters a dataset. Group and SumLength do
// not validate: malformed values propagate through them.
func Validate(r models.TrackSegment) error {
	if strings.TrimSpace(r.Section) == "" {
		return ErrMissingSection
	}
	if r.Track != models.Track1 && r.Track != models.Track2 {
		return fmt.Errorf("%w: %d", ErrInvalidTrack, r.Track)
	}
	if !finite(r.StartKm) || !finite(r.EndKm) {
		return fmt.Errorf("%w: %v-%v", ErrInvalidPosition, r.StartKm, r.EndKm)
	}
	if r.StartKm >= r.EndKm {
		return fmt.Errorf("%w: %v-%v", ErrReversedRange, r.StartKm, r.EndKm)
	}
	if r.ForecastYear <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidYear, r.ForecastYear)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
