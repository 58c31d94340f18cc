package models

// AggregateFigure is a summed length paired with its share of a reference total
type AggregateFigure struct {
	Meters  float64 `json:"meters"`
	Percent float64 `json:"percent"` // Unrounded, 0 when undefined
	Display float64 `json:"display"` // Percent rounded for display
	Defined bool    `json:"defined"` // False when the reference total is zero
}

// WindowFigure is the aggregate for forecast years From..To (inclusive)
type WindowFigure struct {
	From int `json:"from"`
	To   int `json:"to"`
	AggregateFigure
}

// TrackTotal is the aggregate of one track within a section
type TrackTotal struct {
	Track int `json:"track"`
	AggregateFigure
}

// SectionSummary holds the derived figures of one section
type SectionSummary struct {
	Section     string  `json:"section"`
	RecordCount int     `json:"record_count"`
	TotalMeters float64 `json:"total_meters"`

	// Km-post extent
	PKMin float64 `json:"pk_min"`
	PKMax float64 `json:"pk_max"`

	// Length forecast before the reference year
	ReferenceYear int             `json:"reference_year"`
	Overdue       AggregateFigure `json:"overdue"`

	Windows []WindowFigure `json:"windows"`
	Tracks  []TrackTotal   `json:"tracks"`

	MedianRecordMeters float64 `json:"median_record_meters"`
}

// LineSummary holds the figures of the whole line
type LineSummary struct {
	TotalMeters   float64          `json:"total_meters"`
	ReferenceYear int              `json:"reference_year"`
	Overdue       AggregateFigure  `json:"overdue"`
	Windows       []WindowFigure   `json:"windows"`
	Sections      []SectionSummary `json:"sections"`
}
