package models

// Station represents a station marker along a line section
type Station struct {
	Section string  `json:"section" db:"section"`
	Name    string  `json:"name" db:"name"`
	PK      float64 `json:"pk" db:"pk"` // Km-post of the station
}
