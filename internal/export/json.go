package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/ovor/internal/api"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	District   string       `json:"district"`
	Count      int          `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	Label                  string   `json:"label"`
	Month                  string   `json:"month"`
	FinYear                string   `json:"fin_year"`
	TotalHouseholdsWorked  *int64   `json:"total_households_worked"`
	TotalIndividualsWorked *int64   `json:"total_individuals_worked"`
	WomenPersondays        *int64   `json:"women_persondays"`
	TotalExp               *float64 `json:"total_exp"`
	Wages                  *float64 `json:"wages"`
	AverageWageRate        *float64 `json:"average_wage_rate"`

	AverageDaysEmployment    *int64         `json:"average_days_employment"`
	TotalHHsCompleted100Days *int64         `json:"total_hhs_completed_100_days"`
	Remarks                  string         `json:"remarks,omitempty"`
	LastUpdated              *api.Timestamp `json:"last_updated"`
}

// ToJSON writes records in the given order as pretty-printed JSON. Absent
// values are written as null.
func ToJSON(district string, records []api.PerformanceRecord, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		District:   district,
		Count:      len(records),
	}

	for _, r := range records {
		export.Records = append(export.Records, jsonRecord{
			Label:                  r.Label(),
			Month:                  r.Month,
			FinYear:                r.FinYear,
			TotalHouseholdsWorked:  r.TotalHouseholdsWorked,
			TotalIndividualsWorked: r.TotalIndividualsWorked,
			WomenPersondays:        r.WomenPersondays,
			TotalExp:               r.TotalExp,
			Wages:                  r.Wages,
			AverageWageRate:        r.AverageWageRate,

			AverageDaysEmployment:    r.AverageDaysEmployment,
			TotalHHsCompleted100Days: r.TotalHHsCompleted100Days,
			Remarks:                  r.Remarks,
			LastUpdated:              r.LastUpdated,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
