package renovation

import (
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// Options controls the derived figures of the summaries
type Options struct {
	ReferenceYear int   // Records forecast before this year count as overdue
	WindowStart   int   // First year of the first forecast window
	WindowEnd     int   // Last year covered by the windows
	WindowSize    int   // Years per window
	Places        int32 // Decimals of displayed percentages
}

// DefaultOptions returns the figures shown on the dashboard timeline
func DefaultOptions() Options {
	return Options{
		ReferenceYear: 2025,
		WindowStart:   1995,
		WindowEnd:     2069,
		WindowSize:    5,
		Places:        1,
	}
}

// Windows splits WindowStart..WindowEnd into consecutive inclusive ranges.
// The last window is cut at WindowEnd.
func (o Options) Windows() [][2]int {
	if o.WindowSize <= 0 || o.WindowEnd < o.WindowStart {
		return nil
	}
	var windows [][2]int
	for from := o.WindowStart; from <= o.WindowEnd; from += o.WindowSize {
		windows = append(windows, [2]int{from, min(from+o.WindowSize-1, o.WindowEnd)})
	}
	return windows
}

// Summarize computes the figures of one section
func Summarize(records []models.TrackSegment, section string, opts Options) models.SectionSummary {
	inSection := lo.Filter(records, func(r models.TrackSegment, _ int) bool {
		return r.Section == section
	})
	total := SumLength(inSection, nil)

	summary := models.SectionSummary{
		Section:       section,
		RecordCount:   len(inSection),
		TotalMeters:   total,
		ReferenceYear: opts.ReferenceYear,
		Overdue:       NewFigure(SumLength(inSection, BeforeYear(opts.ReferenceYear)), total, opts.Places),
		Windows:       windowFigures(inSection, total, opts),
		Tracks:        []models.TrackTotal{},
	}

	if len(inSection) > 0 {
		summary.PKMin = lo.MinBy(inSection, func(a, b models.TrackSegment) bool { return a.StartKm < b.StartKm }).StartKm
		summary.PKMax = lo.MaxBy(inSection, func(a, b models.TrackSegment) bool { return a.EndKm > b.EndKm }).EndKm
	}

	for _, track := range Tracks(inSection, section) {
		summary.Tracks = append(summary.Tracks, models.TrackTotal{
			Track:           track,
			AggregateFigure: NewFigure(SumLength(inSection, OnTrack(track)), total, opts.Places),
		})
	}

	lengths := lo.Map(inSection, func(r models.TrackSegment, _ int) float64 { return r.LengthMeters() })
	if median, err := stats.Median(lengths); err == nil {
		summary.MedianRecordMeters = median
	}

	return summary
}

// SummarizeLine computes the figures of the whole line, one summary per
// section in order of first appearance
func SummarizeLine(records []models.TrackSegment, opts Options) models.LineSummary {
	total := SumLength(records, nil)

	line := models.LineSummary{
		TotalMeters:   total,
		ReferenceYear: opts.ReferenceYear,
		Overdue:       NewFigure(SumLength(records, BeforeYear(opts.ReferenceYear)), total, opts.Places),
		Windows:       windowFigures(records, total, opts),
		Sections:      []models.SectionSummary{},
	}
	for _, section := range Sections(records) {
		line.Sections = append(line.Sections, Summarize(records, section, opts))
	}
	return line
}

// Interval computes the figure of a custom forecast window within a section
func Interval(records []models.TrackSegment, section string, from, to int, places int32) models.WindowFigure {
	total := SumLength(records, InSection(section))
	part := SumLength(records, All(InSection(section), BetweenYears(from, to)))
	return models.WindowFigure{
		From:            from,
		To:              to,
		AggregateFigure: NewFigure(part, total, places),
	}
}

func windowFigures(records []models.TrackSegment, total float64, opts Options) []models.WindowFigure {
	windows := opts.Windows()
	figures := make([]models.WindowFigure, 0, len(windows))
	for _, w := range windows {
		figures = append(figures, models.WindowFigure{
			From:            w[0],
			To:              w[1],
			AggregateFigure: NewFigure(SumLength(records, BetweenYears(w[0], w[1])), total, opts.Places),
		})
	}
	return figures
}
