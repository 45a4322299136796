package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DistrictID is the backend's opaque district identifier. The backend emits
// it as a JSON number today; strings are accepted too.
type DistrictID string

func (id *DistrictID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode district id: %w", err)
		}
		*id = DistrictID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode district id: %w", err)
	}
	*id = DistrictID(n.String())
	return nil
}

type District struct {
	ID           DistrictID `json:"id"`
	StateCode    string     `json:"state_code"`
	StateName    string     `json:"state_name"`
	DistrictCode string     `json:"district_code"`
	DistrictName string     `json:"district_name"`
}

// Label is the selector text, "district, state".
func (d District) Label() string {
	return fmt.Sprintf("%s, %s", d.DistrictName, d.StateName)
}

// PerformanceRecord is one month of statistics for a district. Numeric
// fields are nil when the source has no value.
type PerformanceRecord struct {
	Month   string `json:"month"`
	FinYear string `json:"fin_year"`

	DistrictName string `json:"district_name,omitempty"`
	StateName    string `json:"state_name,omitempty"`

	// TotalExp and Wages are in lakhs; AverageWageRate is per person-day.
	TotalHouseholdsWorked  *int64   `json:"total_households_worked"`
	TotalIndividualsWorked *int64   `json:"total_individuals_worked"`
	TotalExp               *float64 `json:"total_exp"`
	Wages                  *float64 `json:"wages"`
	WomenPersondays        *int64   `json:"women_persondays"`
	AverageWageRate        *float64 `json:"average_wage_rate"`

	AverageDaysEmployment    *int64 `json:"average_days_employment,omitempty"`
	TotalHHsCompleted100Days *int64 `json:"total_hhs_completed_100_days,omitempty"`
	Remarks                  string `json:"remarks,omitempty"`

	LastUpdated *Timestamp `json:"last_updated,omitempty"`
}

// timestampLayouts are tried in order. The backend may omit the offset, in
// which case the value is taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Timestamp decodes the backend's update times, with or without an offset.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		// An unreadable update time must not cost the record its statistics.
		t.Time = time.Time{}
		return nil
	}
	*t = ts
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// ParseTimestamp accepts RFC 3339 and the offset-less forms the backend
// writes for naive datetimes. An empty string is the zero Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: ts}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("decode timestamp: unrecognized format %q", s)
}

// Label is the chart/card heading, "month fin_year".
func (r PerformanceRecord) Label() string {
	return r.Month + " " + r.FinYear
}

// DetectedDistrict is the backend's answer to a coordinates lookup.
// District is empty when the backend could not resolve one.
type DetectedDistrict struct {
	Latitude  string
	Longitude string
	District  string
}

type detectResponse struct {
	Message   string  `json:"message"`
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	District  *string `json:"district"`
}
