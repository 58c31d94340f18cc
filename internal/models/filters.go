package models

// SegmentFilter represents filter parameters for the segment table
type SegmentFilter struct {
	Section  string `form:"section"`
	Track    int    `form:"track"`   // 0 for both tracks
	MinYear  int    `form:"minYear"` // Inclusive
	MaxYear  int    `form:"maxYear"` // Inclusive
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// GroupFilter represents filter parameters for grouped runs
type GroupFilter struct {
	Track int `form:"track"` // 0 for both tracks
}

// IntervalFilter represents a forecast year window
type IntervalFilter struct {
	From int `form:"from" binding:"required"`
	To   int `form:"to" binding:"required"`
}

// StationFilter represents filter parameters for stations
type StationFilter struct {
	Section string `form:"section"`
}

// SegmentPage is a paginated slice of the segment table
type SegmentPage struct {
	Data       []TrackSegment `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
