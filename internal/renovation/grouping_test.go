package renovation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

func seg(track int, start, end float64, year int) models.TrackSegment {
	return models.TrackSegment{Section: "S1", Track: track, StartKm: start, EndKm: end, ForecastYear: year}
}

func TestGroup(t *testing.T) {
	tests := []struct {
		name    string
		records []models.TrackSegment
		want    []models.GroupedSegment
	}{
		{
			name:    "empty input",
			records: nil,
			want:    []models.GroupedSegment{},
		},
		{
			name:    "single record",
			records: []models.TrackSegment{seg(1, 0, 1.5, 2030)},
			want:    []models.GroupedSegment{{Track: 1, StartKm: 0, EndKm: 1.5, ForecastYear: 2030, LengthMeters: 1500}},
		},
		{
			name: "adjacent records with the same year merge",
			records: []models.TrackSegment{
				seg(1, 0, 2, 2025),
				seg(1, 2, 5, 2025),
				seg(1, 5, 7, 2030),
			},
			want: []models.GroupedSegment{
				{Track: 1, StartKm: 0, EndKm: 5, ForecastYear: 2025, LengthMeters: 5000},
				{Track: 1, StartKm: 5, EndKm: 7, ForecastYear: 2030, LengthMeters: 2000},
			},
		},
		{
			name: "gap keeps runs apart",
			records: []models.TrackSegment{
				seg(1, 0, 2, 2025),
				seg(1, 3, 5, 2025),
			},
			want: []models.GroupedSegment{
				{Track: 1, StartKm: 0, EndKm: 2, ForecastYear: 2025, LengthMeters: 2000},
				{Track: 1, StartKm: 3, EndKm: 5, ForecastYear: 2025, LengthMeters: 2000},
			},
		},
		{
			name: "year change splits an adjacent run",
			records: []models.TrackSegment{
				seg(2, 10, 11, 2040),
				seg(2, 11, 12, 2041),
				seg(2, 12, 13, 2041),
			},
			want: []models.GroupedSegment{
				{Track: 2, StartKm: 10, EndKm: 11, ForecastYear: 2040, LengthMeters: 1000},
				{Track: 2, StartKm: 11, EndKm: 13, ForecastYear: 2041, LengthMeters: 2000},
			},
		},
		{
			name: "interleaved tracks never merge",
			records: []models.TrackSegment{
				seg(1, 0, 1, 2030),
				seg(2, 1, 2, 2030),
			},
			want: []models.GroupedSegment{
				{Track: 1, StartKm: 0, EndKm: 1, ForecastYear: 2030, LengthMeters: 1000},
				{Track: 2, StartKm: 1, EndKm: 2, ForecastYear: 2030, LengthMeters: 1000},
			},
		},
		{
			name: "input order is not corrected",
			records: []models.TrackSegment{
				seg(1, 2, 3, 2030),
				seg(1, 0, 2, 2030),
			},
			want: []models.GroupedSegment{
				{Track: 1, StartKm: 2, EndKm: 3, ForecastYear: 2030, LengthMeters: 1000},
				{Track: 1, StartKm: 0, EndKm: 2, ForecastYear: 2030, LengthMeters: 2000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Group(tt.records)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Group() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroup_EmptyIsNotNil(t *testing.T) {
	got := Group([]models.TrackSegment{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroup_NaNStartsNewRun(t *testing.T) {
	records := []models.TrackSegment{
		seg(1, 0, math.NaN(), 2030),
		seg(1, math.NaN(), 2, 2030),
		seg(1, 2, 3, 2030),
		seg(1, math.NaN(), 4, 2030),
	}

	got := Group(records)
	require.Len(t, got, 3)

	// NaN never equals the open run's end, but a finite start matching a
	// finite end after it still continues the run
	assert.Equal(t, 0.0, got[0].StartKm)
	assert.True(t, math.IsNaN(got[0].EndKm))
	assert.True(t, math.IsNaN(got[1].StartKm))
	assert.Equal(t, 3.0, got[1].EndKm)
	assert.True(t, math.IsNaN(got[2].StartKm))
	assert.Equal(t, 4.0, got[2].EndKm)
}

func TestGroup_LengthIsAccumulatedNotRecomputed(t *testing.T) {
	records := []models.TrackSegment{
		seg(1, 0.1, 0.2, 2030),
		seg(1, 0.2, 0.3, 2030),
		seg(1, 0.3, 0.7, 2030),
	}

	got := Group(records)
	require.Len(t, got, 1)

	var want float64
	for _, r := range records {
		want += (r.EndKm - r.StartKm) * 1000
	}
	assert.Equal(t, want, got[0].LengthMeters)
	assert.Equal(t, 0.1, got[0].StartKm)
	assert.Equal(t, 0.7, got[0].EndKm)
}

func sampleTrack() []models.TrackSegment {
	return []models.TrackSegment{
		seg(1, 0, 0.25, 2020),
		seg(1, 0.25, 0.8, 2020),
		seg(1, 0.8, 1.1, 2031),
		seg(1, 1.2, 1.9, 2031),
		seg(1, 1.9, 2.35, 2031),
		seg(1, 2.35, 3, 2045),
		seg(1, 3, 3.125, 2045),
	}
}

func TestGroup_ConservesLength(t *testing.T) {
	records := sampleTrack()

	var grouped float64
	for _, g := range Group(records) {
		grouped += g.LengthMeters
	}

	assert.InDelta(t, SumLength(records, nil), grouped, 1e-6)
}

func TestGroup_IsFixedPoint(t *testing.T) {
	first := Group(sampleTrack())

	again := make([]models.TrackSegment, 0, len(first))
	for _, g := range first {
		again = append(again, g.AsSegment("S1"))
	}
	second := Group(again)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].StartKm, second[i].StartKm)
		assert.Equal(t, first[i].EndKm, second[i].EndKm)
		assert.Equal(t, first[i].ForecastYear, second[i].ForecastYear)
		assert.InDelta(t, first[i].LengthMeters, second[i].LengthMeters, 1e-6)
	}
}

func TestGroup_BoundariesAreMonotonic(t *testing.T) {
	groups := Group(sampleTrack())
	for i := 1; i < len(groups); i++ {
		assert.LessOrEqual(t, groups[i-1].EndKm, groups[i].StartKm)
	}
}

func TestGroupTrack(t *testing.T) {
	records := []models.TrackSegment{
		{Section: "A", Track: 1, StartKm: 0, EndKm: 1, ForecastYear: 2030},
		{Section: "A", Track: 2, StartKm: 0, EndKm: 1, ForecastYear: 2030},
		{Section: "B", Track: 1, StartKm: 1, EndKm: 2, ForecastYear: 2030},
		{Section: "A", Track: 1, StartKm: 1, EndKm: 2, ForecastYear: 2030},
	}

	got := GroupTrack(records, "A", 1)
	want := []models.GroupedSegment{{Track: 1, StartKm: 0, EndKm: 2, ForecastYear: 2030, LengthMeters: 2000}}
	assert.Equal(t, want, got)

	assert.Empty(t, GroupTrack(records, "C", 1))
}

func TestGroupAll(t *testing.T) {
	records := []models.TrackSegment{
		{Section: "B", Track: 2, StartKm: 0, EndKm: 1, ForecastYear: 2030},
		{Section: "A", Track: 1, StartKm: 0, EndKm: 1, ForecastYear: 2030},
		{Section: "B", Track: 2, StartKm: 1, EndKm: 2, ForecastYear: 2030},
		{Section: "B", Track: 1, StartKm: 0, EndKm: 3, ForecastYear: 2050},
	}

	got := GroupAll(records)
	require.Len(t, got, 3)

	assert.Equal(t, "B", got[0].Section)
	assert.Equal(t, 2, got[0].Track)
	assert.Equal(t, []models.GroupedSegment{{Track: 2, StartKm: 0, EndKm: 2, ForecastYear: 2030, LengthMeters: 2000}}, got[0].Groups)

	assert.Equal(t, "A", got[1].Section)
	assert.Equal(t, "B", got[2].Section)
	assert.Equal(t, 1, got[2].Track)
}

func TestSections(t *testing.T) {
	records := []models.TrackSegment{
		{Section: "T2"}, {Section: ""}, {Section: "T1"}, {Section: "T2"},
	}
	assert.Equal(t, []string{"T2", "T1"}, Sections(records))
	assert.Empty(t, Sections(nil))
}

func TestTracks(t *testing.T) {
	records := []models.TrackSegment{
		{Section: "T1", Track: 2}, {Section: "T2", Track: 1}, {Section: "T1", Track: 1}, {Section: "T1", Track: 2},
	}
	assert.Equal(t, []int{2, 1}, Tracks(records, "T1"))
}
