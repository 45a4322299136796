package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/ovor/internal/api"
	"github.com/sadopc/ovor/internal/geo"
	"github.com/sadopc/ovor/internal/series"
	"go.uber.org/zap"
)

// DataSource is the backend the dashboard reads from.
type DataSource interface {
	Districts(ctx context.Context) ([]api.District, error)
	Performance(ctx context.Context, districtName string) ([]api.PerformanceRecord, error)
	DetectDistrict(ctx context.Context, lat, lon float64) (api.DetectedDistrict, error)
}

// performanceModel holds the selection state and drives the fetches behind
// it. It never touches the network itself; every fetch is returned as a
// tea.Cmd and its result comes back through apply*.
type performanceModel struct {
	src     DataSource
	locator geo.Locator
	logger  *zap.Logger

	districts       []api.District
	districtsStatus sourceStatus

	selectedID api.DistrictID

	// searched is the district whose records are currently held.
	searched      string
	series        series.Series
	recordsStatus sourceStatus

	// Only the response carrying the latest generation is applied.
	generation uint64
	inFlight   string
	cancel     context.CancelFunc

	locating       bool
	locationStatus sourceStatus
	position       *geo.Position
}

func newPerformanceModel(src DataSource, loc geo.Locator, logger *zap.Logger) performanceModel {
	if loc == nil {
		loc = geo.Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return performanceModel{
		src:     src,
		locator: loc,
		logger:  logger,
	}
}

func (m performanceModel) loading() bool { return m.recordsStatus.state == loadLoading }

func (m performanceModel) hasRecords() bool { return !m.series.Empty() }

func (m performanceModel) locationAvailable() bool { return m.locator.Available() }

func (m performanceModel) selected() (api.District, bool) {
	if m.selectedID == "" {
		return api.District{}, false
	}
	for _, d := range m.districts {
		if d.ID == m.selectedID {
			return d, true
		}
	}
	return api.District{}, false
}

func (m performanceModel) canSearch() bool {
	_, ok := m.selected()
	return ok && !m.loading()
}

func (m performanceModel) canLocate() bool {
	return m.locationAvailable() && !m.locating && !m.loading()
}

// selectDistrict changes the selection. Held records are kept until the
// next successful search.
func (m *performanceModel) selectDistrict(id api.DistrictID) {
	m.selectedID = id
}

// findDistrict matches a name case-insensitively; the backend looks names
// up the same way.
func (m performanceModel) findDistrict(name string) (api.District, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return api.District{}, false
	}
	for _, d := range m.districts {
		if strings.EqualFold(d.DistrictName, name) {
			return d, true
		}
	}
	return api.District{}, false
}

func (m performanceModel) loadDistricts() (performanceModel, tea.Cmd) {
	m.districtsStatus = sourceStatus{state: loadLoading}
	src := m.src
	return m, func() tea.Msg {
		districts, err := src.Districts(context.Background())
		return districtsLoadedMsg{districts: districts, err: err}
	}
}

func (m performanceModel) applyDistricts(msg districtsLoadedMsg) performanceModel {
	if msg.err != nil {
		// A failed reload keeps the list and selection from the last success.
		m.logger.Error("load districts failed", zap.Error(msg.err))
		m.districtsStatus = sourceStatus{state: loadFailed, err: msg.err}
		return m
	}
	m.districts = msg.districts
	m.districtsStatus = sourceStatus{state: loadLoaded}
	if _, ok := m.selected(); !ok {
		m.selectedID = ""
	}
	m.logger.Info("districts loaded", zap.Int("count", len(msg.districts)))
	return m
}

// search fetches records for district. An empty name is a no-op. Starting a
// search cancels the one in flight.
func (m performanceModel) search(district string) (performanceModel, tea.Cmd) {
	district = strings.TrimSpace(district)
	if district == "" {
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.generation++
	m.inFlight = district
	m.recordsStatus = sourceStatus{state: loadLoading}

	gen, src := m.generation, m.src
	return m, func() tea.Msg {
		records, err := src.Performance(ctx, district)
		return performanceLoadedMsg{generation: gen, district: district, records: records, err: err}
	}
}

func (m performanceModel) searchSelected() (performanceModel, tea.Cmd) {
	d, ok := m.selected()
	if !ok || m.loading() {
		return m, nil
	}
	return m.search(d.DistrictName)
}

// applyPerformance installs a search result. The bool reports whether the
// message was current; stale responses are dropped untouched.
func (m performanceModel) applyPerformance(msg performanceLoadedMsg) (performanceModel, bool) {
	if msg.generation != m.generation {
		m.logger.Debug("dropping stale performance response",
			zap.String("district", msg.district),
			zap.Uint64("generation", msg.generation),
			zap.Uint64("current", m.generation),
		)
		return m, false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.inFlight = ""

	if msg.err != nil {
		m.logger.Error("load performance failed",
			zap.String("district", msg.district),
			zap.Error(msg.err),
		)
		m.recordsStatus = sourceStatus{state: loadFailed, err: msg.err}
		return m, true
	}

	m.series = series.Normalize(msg.records)
	m.searched = msg.district
	m.recordsStatus = sourceStatus{state: loadLoaded}
	m.logger.Info("performance loaded",
		zap.String("district", msg.district),
		zap.Int("records", len(msg.records)),
	)
	return m, true
}

func (m performanceModel) detectLocation() (performanceModel, tea.Cmd) {
	if !m.locationAvailable() {
		m.locationStatus = sourceStatus{state: loadFailed, err: geo.ErrUnavailable}
		return m, statusCmd("Geolocation is not available. Please select your district manually.", true)
	}
	if !m.canLocate() {
		return m, nil
	}
	m.locating = true
	m.locationStatus = sourceStatus{state: loadLoading}

	loc, src := m.locator, m.src
	return m, func() tea.Msg {
		ctx := context.Background()
		pos, err := loc.Locate(ctx)
		if err != nil {
			return locationMsg{err: err}
		}
		detected, derr := src.DetectDistrict(ctx, pos.Latitude, pos.Longitude)
		return locationMsg{pos: pos, district: detected.District, detectErr: derr}
	}
}

func (m performanceModel) applyLocation(msg locationMsg) (performanceModel, tea.Cmd) {
	m.locating = false
	if msg.err != nil {
		m.logger.Error("get location failed", zap.Error(msg.err))
		m.locationStatus = sourceStatus{state: loadFailed, err: msg.err}
		text := "Could not get your location. Please select your district manually."
		if errors.Is(msg.err, geo.ErrUnavailable) {
			text = "Geolocation is not available. Please select your district manually."
		}
		return m, statusCmd(text, true)
	}

	pos := msg.pos
	m.position = &pos
	m.locationStatus = sourceStatus{state: loadLoaded}
	if msg.detectErr != nil {
		m.logger.Warn("detect district failed", zap.Error(msg.detectErr))
	}

	d, ok := m.findDistrict(msg.district)
	if !ok || m.loading() {
		return m, statusCmd(pos.String()+". Your district could not be detected; please select it manually.", false)
	}

	m.selectDistrict(d.ID)
	var cmd tea.Cmd
	m, cmd = m.search(d.DistrictName)
	return m, tea.Batch(cmd, statusCmd(fmt.Sprintf("%s. Detected %s.", pos, d.Label()), false))
}
