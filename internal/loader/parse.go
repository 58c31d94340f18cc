package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// ErrMalformedJSON is returned when a dataset is not a JSON array of objects
var ErrMalformedJSON = errors.New("malformed dataset")

// FieldMapping names the upstream JSON keys of both datasets
type FieldMapping struct {
	// resum.json
	Section      string
	Track        string
	StartKm      string
	EndKm        string
	ForecastYear string

	// estacions.json
	StationSection string
	StationName    string
	StationPK      string
}

// DefaultFieldMapping returns the keys published by the upstream datasets
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		Section:        "TRAM",
		Track:          "VIA",
		StartKm:        "PK INICI",
		EndKm:          "PK FINAL",
		ForecastYear:   "PREVISIO",
		StationSection: "TRAM",
		StationName:    "NOM",
		StationPK:      "PK",
	}
}

// Rejection describes a dropped row
type Rejection struct {
	Row int
	Err error
}

// ParseSegments decodes the renovation summary. Invalid rows are returned
// separately from the valid records, which keep their source order.
func ParseSegments(data []byte, f FieldMapping, validate func(models.TrackSegment) error) ([]models.TrackSegment, []Rejection, error) {
	rows, err := objectRows(data)
	if err != nil {
		return nil, nil, err
	}

	segments := make([]models.TrackSegment, 0, len(rows))
	var rejected []Rejection
	for i, row := range rows {
		rec := models.TrackSegment{
			Section:      text(field(row, f.Section)),
			Track:        trackNumber(field(row, f.Track)),
			StartKm:      number(field(row, f.StartKm)),
			EndKm:        number(field(row, f.EndKm)),
			ForecastYear: integer(field(row, f.ForecastYear)),
		}
		if validate != nil {
			if err := validate(rec); err != nil {
				rejected = append(rejected, Rejection{Row: i, Err: err})
				continue
			}
		}
		segments = append(segments, rec)
	}
	return segments, rejected, nil
}

// ParseStations decodes the station list. Rows without a name or a finite
// km-post are dropped.
func ParseStations(data []byte, f FieldMapping) ([]models.Station, []Rejection, error) {
	rows, err := objectRows(data)
	if err != nil {
		return nil, nil, err
	}

	stations := make([]models.Station, 0, len(rows))
	var rejected []Rejection
	for i, row := range rows {
		st := models.Station{
			Section: text(field(row, f.StationSection)),
			Name:    text(field(row, f.StationName)),
			PK:      number(field(row, f.StationPK)),
		}
		if st.Name == "" || math.IsNaN(st.PK) || math.IsInf(st.PK, 0) {
			rejected = append(rejected, Rejection{Row: i, Err: fmt.Errorf("station row %d: missing name or km-post", i)})
			continue
		}
		stations = append(stations, st)
	}
	return stations, rejected, nil
}

func objectRows(data []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedJSON)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformedJSON)
	}

	rows := root.Array()
	for i, row := range rows {
		if !row.IsObject() {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrMalformedJSON, i)
		}
	}
	return rows, nil
}

// field looks a key up by exact name, then case-insensitively. Keys are
// matched by iteration since upstream names contain spaces and accents.
func field(row gjson.Result, name string) gjson.Result {
	var exact, folded gjson.Result
	row.ForEach(func(key, value gjson.Result) bool {
		k := strings.TrimSpace(key.String())
		if k == name {
			exact = value
			return false
		}
		if !folded.Exists() && strings.EqualFold(k, name) {
			folded = value
		}
		return true
	})
	if exact.Exists() {
		return exact
	}
	return folded
}

func text(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// number accepts JSON numbers and numeric strings with a dot or comma
// decimal separator. Anything else is NaN.
func number(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// integer returns an integral value or 0
func integer(v gjson.Result) int {
	f := number(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	return int(f)
}

// trackNumber accepts 1, "1", "V1" or "Via 2". Only a letter prefix is
// dropped, so "-1" stays negative and fails validation.
func trackNumber(v gjson.Result) int {
	if v.Type == gjson.String {
		s := strings.TrimLeftFunc(v.Str, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsSpace(r) })
		return integer(gjson.Result{Type: gjson.String, Str: s})
	}
	return integer(v)
}
