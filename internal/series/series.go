// Package series orders monthly performance records chronologically and
// derives the index-aligned value slices the charts consume.
package series

import (
	"cmp"
	"slices"

	"github.com/sadopc/ovor/internal/api"
)

// Months is the fixed calendar order used for ranking.
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthRank returns the zero-based calendar index of month, or -1 when the
// label is not one of Months. Matching is exact.
func MonthRank(month string) int {
	for i, m := range Months {
		if m == month {
			return i
		}
	}
	return -1
}

// Series is a chronologically ordered record set. Every slice is aligned
// index-for-index with Records; a nil element means the source had no value.
type Series struct {
	Records []api.PerformanceRecord
	Labels  []string

	Households       []*int64
	Individuals      []*int64
	WomenPersondays  []*int64
	TotalExpenditure []*float64
	Wages            []*float64
	AverageWageRate  []*float64
}

// Normalize stably sorts records by month rank and derives the chart
// series. Fiscal year does not participate in ordering. The input slice is
// left untouched.
func Normalize(records []api.PerformanceRecord) Series {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b api.PerformanceRecord) int {
		return cmp.Compare(MonthRank(a.Month), MonthRank(b.Month))
	})

	n := len(sorted)
	s := Series{
		Records:          sorted,
		Labels:           make([]string, n),
		Households:       make([]*int64, n),
		Individuals:      make([]*int64, n),
		WomenPersondays:  make([]*int64, n),
		TotalExpenditure: make([]*float64, n),
		Wages:            make([]*float64, n),
		AverageWageRate:  make([]*float64, n),
	}
	for i, r := range sorted {
		s.Labels[i] = r.Label()
		s.Households[i] = r.TotalHouseholdsWorked
		s.Individuals[i] = r.TotalIndividualsWorked
		s.WomenPersondays[i] = r.WomenPersondays
		s.TotalExpenditure[i] = r.TotalExp
		s.Wages[i] = r.Wages
		s.AverageWageRate[i] = r.AverageWageRate
	}
	return s
}

func (s Series) Len() int { return len(s.Records) }

// Empty reports whether there is nothing to render.
func (s Series) Empty() bool { return len(s.Records) == 0 }

// MaxCount is the largest present value across the count series, or 0.
func (s Series) MaxCount() int64 {
	var m int64
	for _, vals := range [][]*int64{s.Households, s.Individuals, s.WomenPersondays} {
		for _, v := range vals {
			if v != nil && *v > m {
				m = *v
			}
		}
	}
	return m
}

// MaxAmount is the largest present value across the monetary series, or 0.
func (s Series) MaxAmount() float64 {
	var m float64
	for _, vals := range [][]*float64{s.TotalExpenditure, s.Wages} {
		for _, v := range vals {
			if v != nil && *v > m {
				m = *v
			}
		}
	}
	return m
}
