package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/ovor/internal/api"
	"github.com/sadopc/ovor/internal/export"
	"github.com/sadopc/ovor/internal/geo"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Options configures the collaborators of the App. Zero values are usable.
type Options struct {
	Locator   geo.Locator
	Logger    *zap.Logger
	Locale    language.Tag
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	width  int
	height int

	activePage    page
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	dashboard dashboardModel
	about     aboutModel

	help     help.Model
	status   string
	statusOK bool
}

func NewApp(src DataSource, opts Options) App {
	h := help.New()
	h.ShowAll = false

	locale := opts.Locale
	if locale == language.Und {
		locale = language.English
	}
	dir := opts.ExportDir
	if dir == "" {
		dir = "."
	}

	perf := newPerformanceModel(src, opts.Locator, opts.Logger)
	return App{
		activePage: pageDashboard,
		exportDir:  dir,
		dashboard:  newDashboardModel(perf, newFormatter(locale)),
		about:      newAboutModel(),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.about.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// The district picker captures all input while open.
		if a.isFormActive() {
			return a.updateActivePage(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if !a.dashboard.perf.hasRecords() {
				a.setStatus("Nothing to export. Search for a district first.", true)
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activePage = pageDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activePage = pageAbout
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activePage = (a.activePage + 1) % page(len(pageNames))
			return a, nil
		}

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case districtsLoadedMsg, performanceLoadedMsg, locationMsg:
		// Fetch results land on the dashboard whichever page is visible.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	}

	return a.updateActivePage(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusOK = !isError
}

func (a App) updateActivePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activePage {
	case pageDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case pageAbout:
		// The spinner keeps ticking while the dashboard is hidden.
		if _, ok := msg.(tea.KeyMsg); !ok {
			a.dashboard, cmd = a.dashboard.update(msg)
			return a, cmd
		}
		a.about, cmd = a.about.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activePage == pageDashboard && a.dashboard.picking
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activePage {
	case pageDashboard:
		content = a.dashboard.view()
	case pageAbout:
		content = a.about.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range pageNames {
		if page(i) == a.activePage {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("ovor")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := errorStyle
		if a.statusOK {
			style = successStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.dashboard.perf.searched)
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the records currently on screen, in display order.
func (a App) doExport(format int) tea.Cmd {
	district := a.dashboard.perf.searched
	records := append([]api.PerformanceRecord(nil), a.dashboard.perf.series.Records...)
	dir := a.exportDir

	return func() tea.Msg {
		name := fmt.Sprintf("ovor-%s-%s", slug(district), time.Now().Format("2006-01-02"))

		var path string
		if format == 0 {
			path = filepath.Join(dir, name+".csv")
			if err := export.ToCSV(district, records, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, name+".json")
			if err := export.ToJSON(district, records, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

// slug turns a district name into a file-name fragment.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
