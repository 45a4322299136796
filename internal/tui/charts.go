package tui

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/wavelinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ovor/internal/series"
)

const (
	datasetExpenditure = "expenditure"
	datasetWages       = "wages"
)

type chartSeries struct {
	name  string
	color lipgloss.Color
}

var employmentSeries = []chartSeries{
	{"Total Households Worked", colorHouseholds},
	{"Total Individuals Worked", colorIndividuals},
	{"Women Persondays", colorWomen},
}

var expenditureSeries = []chartSeries{
	{"Total Expenditure (₹ lakhs)", colorHouseholds},
	{"Wages (₹ lakhs)", colorWomen},
}

// chartsModel holds the two rendered charts for the current series.
type chartsModel struct {
	width  int
	height int

	sideBySide bool

	employment  barchart.Model
	expenditure wavelinechart.Model
	built       bool
}

// build redraws both charts. An empty series leaves nothing to render.
func (c *chartsModel) build(s series.Series, w, h int, sideBySide bool) {
	c.width, c.height = w, h
	c.sideBySide = sideBySide
	c.built = false
	if s.Empty() {
		return
	}
	if w < 20 {
		w = 20
	}
	if h < 6 {
		h = 6
	}

	c.employment = buildEmploymentChart(s, w, h)
	c.expenditure = buildExpenditureChart(s, w, h)
	c.built = true
}

// buildEmploymentChart draws one bar per dataset per month, grouped by
// month. Missing values draw an empty bar.
func buildEmploymentChart(s series.Series, w, h int) barchart.Model {
	bc := barchart.New(w, h)

	empty := lipgloss.NewStyle().Foreground(colorSubtle)
	var bars []barchart.BarData
	for i, r := range s.Records {
		values := [][]*int64{s.Households, s.Individuals, s.WomenPersondays}
		for j, ds := range employmentSeries {
			label := ""
			if j == 0 {
				label = r.Month
			}
			bar := barchart.BarData{Label: label}
			if v := values[j][i]; v != nil {
				bar.Values = []barchart.BarValue{{
					Name:  ds.name,
					Value: float64(*v),
					Style: lipgloss.NewStyle().Foreground(ds.color),
				}}
			} else {
				bar.Values = []barchart.BarValue{{Name: ds.name, Value: 0, Style: empty}}
			}
			bars = append(bars, bar)
		}
	}

	bc.PushAll(bars)
	bc.Draw()
	return bc
}

// buildExpenditureChart plots total expenditure and wages against the
// record index, with the y axis starting at zero. Missing values are not
// plotted.
func buildExpenditureChart(s series.Series, w, h int) wavelinechart.Model {
	maxX := float64(s.Len() - 1)
	if maxX < 1 {
		maxX = 1
	}
	maxY := s.MaxAmount() * 1.1
	if maxY <= 0 {
		maxY = 1
	}

	lc := wavelinechart.New(w, h,
		wavelinechart.WithXRange(0, maxX),
		wavelinechart.WithYRange(0, maxY),
	)

	names := []string{datasetExpenditure, datasetWages}
	values := [][]*float64{s.TotalExpenditure, s.Wages}
	for j, name := range names {
		for i, v := range values[j] {
			if v == nil {
				continue
			}
			lc.PlotDataSet(name, canvas.Float64Point{X: float64(i), Y: *v})
		}
		lc.SetDataSetStyles(name, runes.ArcLineStyle, lipgloss.NewStyle().Foreground(expenditureSeries[j].color))
	}
	lc.DrawAll()
	return lc
}

func legend(items []chartSeries) string {
	var parts []string
	for _, it := range items {
		dot := lipgloss.NewStyle().Foreground(it.color).Render("●")
		parts = append(parts, dot+" "+it.name)
	}
	return strings.Join(parts, "  ")
}

func (c chartsModel) view(s series.Series) string {
	if !c.built {
		return ""
	}

	first, last := s.Labels[0], s.Labels[len(s.Labels)-1]
	span := mutedStyle.Render(first + " to " + last)

	employment := chartPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Employment Data Over Time")+"  "+span,
		legend(employmentSeries),
		c.employment.View(),
		mutedStyle.Render("Count"),
	))
	expenditure := chartPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Expenditure Over Time")+"  "+span,
		legend(expenditureSeries),
		c.expenditure.View(),
		mutedStyle.Render("Amount (₹ lakhs)"),
	))

	if c.sideBySide {
		return lipgloss.JoinHorizontal(lipgloss.Top, employment, " ", expenditure)
	}
	return lipgloss.JoinVertical(lipgloss.Left, employment, expenditure)
}
