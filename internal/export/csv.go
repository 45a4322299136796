package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/ovor/internal/api"
)

var csvHeader = []string{
	"District", "Month", "Fin Year",
	"Households Worked", "Individuals Worked", "Women Persondays",
	"Total Exp (lakhs)", "Wages (lakhs)", "Avg Wage Rate",
	"Avg Days Employment", "HHs Completed 100 Days", "Remarks", "Last Updated",
}

// ToCSV writes records in the given order. Absent values become empty cells.
func ToCSV(district string, records []api.PerformanceRecord, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close csv file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			district,
			r.Month,
			r.FinYear,
			intCell(r.TotalHouseholdsWorked),
			intCell(r.TotalIndividualsWorked),
			intCell(r.WomenPersondays),
			floatCell(r.TotalExp),
			floatCell(r.Wages),
			floatCell(r.AverageWageRate),
			intCell(r.AverageDaysEmployment),
			intCell(r.TotalHHsCompleted100Days),
			r.Remarks,
			timeCell(r.LastUpdated),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func timeCell(v *api.Timestamp) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
