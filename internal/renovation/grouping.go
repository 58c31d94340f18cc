package renovation

import (
	"github.com/samber/lo"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// Group merges consecutive records into runs sharing track and forecast year.
//
// Records must belong to a single (section, track) pair and be given in
// physical order. A record joins the open run only when its StartKm equals the
// run's EndKm exactly; the input is never sorted.
func Group(records []models.TrackSegment) []models.GroupedSegment {
	groups := make([]models.GroupedSegment, 0, len(records))

	var current models.GroupedSegment
	open := false

	for _, rec := range records {
		if open && continues(current, rec) {
			current.EndKm = rec.EndKm
			current.LengthMeters += rec.LengthMeters()
			continue
		}

		if open {
			groups = append(groups, current)
		}
		current = models.GroupedSegment{
			Track:        rec.Track,
			StartKm:      rec.StartKm,
			EndKm:        rec.EndKm,
			ForecastYear: rec.ForecastYear,
			LengthMeters: rec.LengthMeters(),
		}
		open = true
	}

	if open {
		groups = append(groups, current)
	}

	return groups
}

// continues reports whether rec extends the run g.
// NaN boundaries never compare equal, so they always start a new run.
func continues(g models.GroupedSegment, rec models.TrackSegment) bool {
	return rec.StartKm == g.EndKm &&
		rec.ForecastYear == g.ForecastYear &&
		rec.Track == g.Track
}

// GroupTrack selects the records of one (section, track) pair, keeping their
// order, and groups them
func GroupTrack(records []models.TrackSegment, section string, track int) []models.GroupedSegment {
	return Group(lo.Filter(records, func(r models.TrackSegment, _ int) bool {
		return r.Section == section && r.Track == track
	}))
}

type trackKey struct {
	section string
	track   int
}

// GroupAll groups every (section, track) pair of a mixed collection.
// Pairs are returned in order of first appearance.
func GroupAll(records []models.TrackSegment) []models.TrackRuns {
	keyOf := func(r models.TrackSegment) trackKey {
		return trackKey{section: r.Section, track: r.Track}
	}

	keys := lo.Uniq(lo.Map(records, func(r models.TrackSegment, _ int) trackKey {
		return keyOf(r)
	}))
	buckets := lo.GroupBy(records, keyOf)

	runs := make([]models.TrackRuns, 0, len(keys))
	for _, k := range keys {
		runs = append(runs, models.TrackRuns{
			Section: k.section,
			Track:   k.track,
			Groups:  Group(buckets[k]),
		})
	}
	return runs
}

// Sections returns the distinct non-empty section codes in order of first appearance
func Sections(records []models.TrackSegment) []string {
	sections := lo.Uniq(lo.Map(records, func(r models.TrackSegment, _ int) string {
		return r.Section
	}))
	return lo.Compact(sections)
}

// Tracks returns the distinct tracks of a section in order of first appearance
func Tracks(records []models.TrackSegment, section string) []int {
	return lo.Uniq(lo.FilterMap(records, func(r models.TrackSegment, _ int) (int, bool) {
		return r.Track, r.Section == section
	}))
}
