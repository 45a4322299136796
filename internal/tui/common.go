package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/ovor/internal/api"
	"github.com/sadopc/ovor/internal/geo"
)

// page is the currently visible screen.
type page int

const (
	pageDashboard page = iota
	pageAbout
)

var pageNames = []string{"Dashboard", "About MGNREGA"}

// loadState tracks one data source independently of whether data is held.
type loadState int

const (
	loadIdle loadState = iota
	loadLoading
	loadLoaded
	loadFailed
)

type sourceStatus struct {
	state loadState
	err   error
}

func (s sourceStatus) failed() bool { return s.state == loadFailed }

// --- Messages ---

type districtsLoadedMsg struct {
	districts []api.District
	err       error
}

type performanceLoadedMsg struct {
	generation uint64
	district   string
	records    []api.PerformanceRecord
	err        error
}

type locationMsg struct {
	pos       geo.Position
	district  string
	err       error
	detectErr error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
