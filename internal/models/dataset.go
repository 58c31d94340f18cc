package models

import "time"

// Dataset is one imported snapshot of both upstream datasets
type Dataset struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loaded_at"`

	// Sources
	SegmentsURL string `json:"segments_url"`
	StationsURL string `json:"stations_url"`

	// Rows in source order
	Segments []TrackSegment `json:"-"`
	Stations []Station      `json:"-"`

	Rejected int `json:"rejected"` // Segment rows dropped by validation
}

// Info returns the snapshot metadata without rows
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		ID:           d.ID,
		LoadedAt:     d.LoadedAt,
		SegmentsURL:  d.SegmentsURL,
		StationsURL:  d.StationsURL,
		SegmentCount: len(d.Segments),
		StationCount: len(d.Stations),
		Rejected:     d.Rejected,
	}
}

// DatasetInfo describes a stored snapshot
type DatasetInfo struct {
	ID           string    `json:"id" db:"id"`
	LoadedAt     time.Time `json:"loaded_at" db:"loaded_at"`
	SegmentsURL  string    `json:"segments_url" db:"segments_url"`
	StationsURL  string    `json:"stations_url" db:"stations_url"`
	SegmentCount int       `json:"segment_count" db:"segment_count"`
	StationCount int       `json:"station_count" db:"station_count"`
	Rejected     int       `json:"rejected" db:"rejected_count"`
}
