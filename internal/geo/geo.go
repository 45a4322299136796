// Package geo provides the "current position" capability used by the
// dashboard's detect-location action. Coordinates are never resolved to a
// district here; that is the backend's job.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnavailable means the platform has no position capability.
	ErrUnavailable = errors.New("geo: position capability unavailable")
	// ErrDenied means the provider refused or failed to produce a position.
	ErrDenied = errors.New("geo: position request denied")
)

type Position struct {
	Latitude  float64
	Longitude float64
}

func (p Position) String() string {
	return fmt.Sprintf("Latitude: %s, Longitude: %s",
		strconv.FormatFloat(p.Latitude, 'f', -1, 64),
		strconv.FormatFloat(p.Longitude, 'f', -1, 64))
}

// Locator reports the user's current position.
type Locator interface {
	Available() bool
	Locate(ctx context.Context) (Position, error)
}

// Unavailable is a Locator for platforms without a position capability.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Locate(context.Context) (Position, error) {
	return Position{}, ErrUnavailable
}

// Static always reports the same configured position.
type Static struct {
	Pos Position
}

func (Static) Available() bool { return true }

func (s Static) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return s.Pos, nil
}

// ParsePosition parses "lat,lon".
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("geo: position %q must be \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("geo: latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Position{}, fmt.Errorf("geo: longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Position{}, fmt.Errorf("geo: position %q out of range", s)
	}
	return Position{Latitude: lat, Longitude: lon}, nil
}

// HTTPLocator asks an IP geolocation endpoint (ip-api.com style JSON) for
// the caller's approximate position.
type HTTPLocator struct {
	endpoint string
	http     *http.Client
}

func NewHTTPLocator(endpoint string, timeout time.Duration) *HTTPLocator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLocator{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLocator) Available() bool { return l != nil && l.endpoint != "" }

type ipLookup struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (l *HTTPLocator) Locate(ctx context.Context) (Position, error) {
	if !l.Available() {
		return Position{}, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return Position{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("locate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return Position{}, fmt.Errorf("%w: status %d", ErrDenied, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return Position{}, fmt.Errorf("locate: status %d", resp.StatusCode)
	}

	var body ipLookup
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Position{}, fmt.Errorf("locate: decode: %w", err)
	}
	if body.Status != "" && body.Status != "success" {
		return Position{}, fmt.Errorf("%w: %s", ErrDenied, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return Position{}, fmt.Errorf("%w: response carried no coordinates", ErrDenied)
	}
	return Position{Latitude: *body.Lat, Longitude: *body.Lon}, nil
}
