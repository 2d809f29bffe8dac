package bcra

import (
	"fmt"
	"strings"
	"time"
)

const apiDateLayout = "2006-01-02"

// APIDate is a calendar date in the API's YYYY-MM-DD wire format.
type APIDate struct {
	time.Time
}

// Date builds an APIDate from a civil date.
func Date(year int, month time.Month, day int) APIDate {
	return APIDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *APIDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(apiDateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d APIDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(apiDateLayout) + `"`), nil
}

// String returns the wire format.
func (d APIDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(apiDateLayout)
}

// ResultSet is the pagination envelope carried by list endpoints.
type ResultSet struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
