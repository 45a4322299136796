package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	var l Locator = Unavailable{}
	assert.False(t, l.Available())
	_, err := l.Locate(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestStatic(t *testing.T) {
	l := Static{Pos: Position{Latitude: 26.32, Longitude: 91.0}}
	require.True(t, l.Available())

	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 26.32, got.Latitude)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Locate(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"26.32,91.005", Position{26.32, 91.005}, false},
		{" -12.5 , 130 ", Position{-12.5, 130}, false},
		{"0,0", Position{}, false},
		{"26.32", Position{}, true},
		{"a,b", Position{}, true},
		{"1,2,3", Position{}, true},
		{"91,0", Position{}, true},
		{"0,181", Position{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParsePosition(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParsePosition(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Latitude: 26.32, Longitude: 91.005}
	assert.Equal(t, "Latitude: 26.32, Longitude: 91.005", p.String())
}

func TestHTTPLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "lat": 12.97, "lon": 77.59, "city": "Bengaluru"}`))
	}))
	defer srv.Close()

	l := NewHTTPLocator(srv.URL, time.Second)
	require.True(t, l.Available())
	got, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: 12.97, Longitude: 77.59}, got)
}

func TestHTTPLocatorFailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPLocator(srv.URL, time.Second).Locate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDenied))
	assert.Contains(t, err.Error(), "private range")
}

func TestHTTPLocatorForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPLocator(srv.URL, time.Second).Locate(context.Background())
	assert.True(t, errors.Is(err, ErrDenied))
}

func TestHTTPLocatorMissingCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPLocator(srv.URL, time.Second).Locate(context.Background())
	assert.True(t, errors.Is(err, ErrDenied))
}

func TestHTTPLocatorEmptyEndpoint(t *testing.T) {
	l := NewHTTPLocator("  ", time.Second)
	assert.False(t, l.Available())
	_, err := l.Locate(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}
