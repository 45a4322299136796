package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ovor/internal/api"
)

const (
	cardWidth   = 36
	chartHeight = 12
	// Below this width the two charts stack vertically.
	sideBySideMinWidth = 110
)

type dashboardModel struct {
	perf   performanceModel
	format formatter
	width  int
	height int

	// District picker state. pickValue is a pointer so it survives value
	// copies of the model while the form is open.
	picking   bool
	form      *huh.Form
	pickValue *string

	spinner spinner.Model
	body    viewport.Model
	charts  chartsModel
}

func newDashboardModel(perf performanceModel, f formatter) dashboardModel {
	v := ""
	// Init starts the district fetch; the value returned by Init cannot carry
	// state back, so the loading state is set here.
	perf.districtsStatus = sourceStatus{state: loadLoading}
	return dashboardModel{
		perf:      perf,
		format:    f,
		pickValue: &v,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(accentStyle),
		),
		body: viewport.New(0, 0),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	_, cmd := d.perf.loadDistricts()
	return tea.Batch(cmd, d.spinner.Tick)
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.rebuildCharts()
	d.layout()
}

// busy reports whether anything is animating the spinner.
func (d dashboardModel) busy() bool {
	return d.perf.loading() || d.perf.locating || d.perf.districtsStatus.state == loadLoading
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case districtsLoadedMsg:
		d.perf = d.perf.applyDistricts(msg)
		d.layout()
		return d, nil

	case performanceLoadedMsg:
		var current bool
		d.perf, current = d.perf.applyPerformance(msg)
		if current {
			d.rebuildCharts()
			d.layout()
			if msg.err == nil {
				d.body.GotoTop()
			}
		}
		return d, nil

	case locationMsg:
		var cmd tea.Cmd
		d.perf, cmd = d.perf.applyLocation(msg)
		d.layout()
		return d, d.withSpinner(cmd)

	case spinner.TickMsg:
		if !d.busy() {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	if d.picking && d.form != nil {
		return d.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Pick):
			return d.showPicker()
		case key.Matches(msg, keys.Search):
			if !d.perf.canSearch() {
				return d, nil
			}
			var cmd tea.Cmd
			d.perf, cmd = d.perf.searchSelected()
			d.layout()
			return d, d.withSpinner(cmd)
		case key.Matches(msg, keys.Locate):
			if !d.perf.locationAvailable() {
				return d, nil
			}
			var cmd tea.Cmd
			d.perf, cmd = d.perf.detectLocation()
			d.layout()
			return d, d.withSpinner(cmd)
		case key.Matches(msg, keys.Retry):
			if d.perf.districtsStatus.state == loadLoading {
				return d, nil
			}
			var cmd tea.Cmd
			d.perf, cmd = d.perf.loadDistricts()
			d.layout()
			return d, d.withSpinner(cmd)
		case key.Matches(msg, keys.Up):
			d.body.ScrollUp(1)
		case key.Matches(msg, keys.Down):
			d.body.ScrollDown(1)
		case key.Matches(msg, keys.PageUp):
			d.body.PageUp()
		case key.Matches(msg, keys.PageDown):
			d.body.PageDown()
		}
	}
	return d, nil
}

func (d dashboardModel) withSpinner(cmd tea.Cmd) tea.Cmd {
	if !d.busy() {
		return cmd
	}
	return tea.Batch(cmd, d.spinner.Tick)
}

func (d dashboardModel) showPicker() (dashboardModel, tea.Cmd) {
	if len(d.perf.districts) == 0 {
		return d, statusCmd("No districts available. Press r to reload.", true)
	}

	options := make([]huh.Option[string], len(d.perf.districts))
	for i, dist := range d.perf.districts {
		options[i] = huh.NewOption(dist.Label(), string(dist.ID))
	}
	*d.pickValue = string(d.perf.selectedID)

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a District").
				Options(options...).
				Height(12).
				Value(d.pickValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.picking = true
	return d, d.form.Init()
}

func (d dashboardModel) updatePicker(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.picking = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.picking = false
		d.form = nil
		d.perf.selectDistrict(api.DistrictID(*d.pickValue))
		d.layout()
		if dist, ok := d.perf.selected(); ok {
			return d, statusCmd("Selected "+dist.Label(), false)
		}
		return d, nil
	}

	return d, cmd
}

func (d *dashboardModel) rebuildCharts() {
	d.charts.build(d.perf.series, d.chartWidth(), chartHeight, d.width >= sideBySideMinWidth)
}

func (d dashboardModel) chartWidth() int {
	// Panel border and padding take 4 columns.
	if d.width >= sideBySideMinWidth {
		return (d.width-4)/2 - 5
	}
	return d.width - 8
}

// layout sizes the scrollable body to whatever the controls leave free and
// refreshes its content.
func (d *dashboardModel) layout() {
	top := d.renderControls()
	h := d.height - lipgloss.Height(top)
	if h < 3 {
		h = 3
	}
	d.body.Width = d.width
	d.body.Height = h
	d.body.SetContent(d.renderResults())
}

func (d dashboardModel) view() string {
	if d.picking && d.form != nil {
		title := titleStyle.Render("Select a District")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View())
		return panelStyle.Width(d.width - 4).Render(content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, d.renderControls(), d.body.View())
}

func (d dashboardModel) renderControls() string {
	var rows []string
	rows = append(rows,
		bannerTitleStyle.Render("Our Voice, Our Rights"),
		subtitleStyle.Render("MGNREGA Performance Dashboard"),
		"",
	)

	if d.perf.locationAvailable() {
		rows = append(rows, d.renderLocate())
	}
	rows = append(rows, d.renderSelector())

	for _, banner := range d.errorBanners() {
		rows = append(rows, errorBannerStyle.Width(d.width-4).Render(banner))
	}
	rows = append(rows, "")
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (d dashboardModel) renderLocate() string {
	label := "Detect my location"
	style := buttonStyle
	if d.perf.locating {
		label = d.spinner.View() + " Detecting location..."
		style = disabledButtonStyle
	} else if !d.perf.canLocate() {
		style = disabledButtonStyle
	}
	line := style.Render(label) + " " + mutedStyle.Render("l")
	if d.perf.position != nil {
		line += "  " + highlightStyle.Render(d.perf.position.String())
	}
	return line
}

func (d dashboardModel) renderSelector() string {
	choice := mutedStyle.Render("Select a District")
	switch {
	case d.perf.districtsStatus.state == loadLoading:
		choice = d.spinner.View() + mutedStyle.Render(" Loading districts...")
	default:
		if dist, ok := d.perf.selected(); ok {
			choice = selectedItemStyle.Render(dist.Label())
		}
	}
	selector := labelStyle.Render("District: ") + choice + " " + mutedStyle.Render("d")

	var search string
	switch {
	case d.perf.loading():
		search = disabledButtonStyle.Render(d.spinner.View() + " Loading...")
	case d.perf.canSearch():
		search = buttonStyle.Render("Search")
	default:
		search = disabledButtonStyle.Render("Search")
	}
	return selector + "   " + search + " " + mutedStyle.Render("s")
}

func (d dashboardModel) errorBanners() []string {
	var banners []string
	if st := d.perf.districtsStatus; st.failed() {
		banners = append(banners, fmt.Sprintf("Could not load districts: %v. Press r to retry.", st.err))
	}
	if st := d.perf.recordsStatus; st.failed() {
		msg := fmt.Sprintf("Could not load performance data: %v.", st.err)
		if d.perf.hasRecords() {
			msg += " Showing previous results for " + d.perf.searched + "."
		}
		banners = append(banners, msg)
	}
	return banners
}

func (d dashboardModel) renderResults() string {
	if !d.perf.hasRecords() {
		if d.perf.recordsStatus.state == loadLoaded {
			return mutedStyle.Render("No performance data found for " + d.perf.searched + ".")
		}
		return mutedStyle.Render("Select a district and press s to view its performance data.")
	}

	heading := titleStyle.Render("Performance Data for " + d.perf.searched)
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		d.charts.view(d.perf.series),
		"",
		d.renderCards(),
	)
}

func (d dashboardModel) renderCards() string {
	perRow := (d.width - 2) / (cardWidth + 3)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	var row []string
	for _, r := range d.perf.series.Records {
		row = append(row, d.renderCard(r))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

type cardField struct {
	label string
	value string
}

func (d dashboardModel) renderCard(r api.PerformanceRecord) string {
	fields := []cardField{
		{"Households Worked", d.format.count(r.TotalHouseholdsWorked)},
		{"Individuals Worked", d.format.count(r.TotalIndividualsWorked)},
		{"Total Expenditure", d.format.lakhs(r.TotalExp)},
		{"Wages", d.format.lakhs(r.Wages)},
		{"Women Persondays", d.format.count(r.WomenPersondays)},
		{"Avg Wage Rate", d.format.perDay(r.AverageWageRate)},
	}

	if r.AverageDaysEmployment != nil {
		fields = append(fields, cardField{"Avg Days Employment", d.format.count(r.AverageDaysEmployment)})
	}
	if r.TotalHHsCompleted100Days != nil {
		fields = append(fields, cardField{"HHs Completed 100 Days", d.format.count(r.TotalHHsCompleted100Days)})
	}

	lines := []string{titleStyle.Render(r.Label())}
	for _, f := range fields {
		lines = append(lines, mutedStyle.Render(f.label+": ")+highlightStyle.Render(f.value))
	}
	if r.LastUpdated != nil && !r.LastUpdated.IsZero() {
		lines = append(lines, mutedStyle.Render("Updated "+r.LastUpdated.Format("02 Jan 2006")))
	}
	if r.Remarks != "" {
		lines = append(lines, warningStyle.Render(strings.TrimSpace(r.Remarks)))
	}
	return cardStyle.Width(cardWidth).MarginRight(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
