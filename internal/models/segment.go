package models

// TrackSegment represents one surveyed stretch of one track within a line section
type TrackSegment struct {
	// Location
	Section string  `json:"section" db:"section"` // Line section code (TRAM)
	Track   int     `json:"track" db:"track"`     // 1 or 2 (VIA)
	StartKm float64 `json:"start_km" db:"start_km"`
	EndKm   float64 `json:"end_km" db:"end_km"`

	// Planning
	ForecastYear int `json:"forecast_year" db:"forecast_year"` // Forecast renovation year
}

// LengthMeters returns the physical length of the segment in meters
func (s TrackSegment) LengthMeters() float64 {
	return (s.EndKm - s.StartKm) * 1000
}

// GroupedSegment is a contiguous run of segments sharing track and forecast year
type GroupedSegment struct {
	Track        int     `json:"track"`
	StartKm      float64 `json:"start_km"`
	EndKm        float64 `json:"end_km"`
	ForecastYear int     `json:"forecast_year"`

	// Sum of the member segment lengths, accumulated in input order
	LengthMeters float64 `json:"length_meters"`
}

// AsSegment converts the run back into the raw record shape
func (g GroupedSegment) AsSegment(section string) TrackSegment {
	return TrackSegment{
		Section:      section,
		Track:        g.Track,
		StartKm:      g.StartKm,
		EndKm:        g.EndKm,
		ForecastYear: g.ForecastYear,
	}
}

// TrackRuns holds the grouped runs of one (section, track) pair
type TrackRuns struct {
	Section string           `json:"section"`
	Track   int              `json:"track"`
	Groups  []GroupedSegment `json:"groups"`
}

// Track numbers
const (
	Track1 = 1
	Track2 = 2
)
