package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestDistricts(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/districts/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "state_code": "18", "state_name": "Assam", "district_code": "1801", "district_name": "Barpeta"},
			{"id": "d-2", "state_code": "29", "state_name": "Karnataka", "district_code": "2901", "district_name": "Bidar"}
		]`))
	})

	c := NewClient(srv.URL+"/api/", time.Second)
	got, err := c.Districts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, DistrictID("1"), got[0].ID)
	assert.Equal(t, "Barpeta", got[0].DistrictName)
	assert.Equal(t, "Barpeta, Assam", got[0].Label())
	assert.Equal(t, DistrictID("d-2"), got[1].ID)
	assert.Equal(t, "2901", got[1].DistrictCode)
}

func TestPerformanceDecodesNullableFields(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"month": "Mar", "fin_year": "2023-24", "total_households_worked": 100,
			 "total_individuals_worked": null, "total_exp": 1234.5, "wages": 900.25,
			 "women_persondays": 4000, "average_wage_rate": 250.5,
			 "last_updated": "2024-04-01T10:00:00Z"},
			{"month": "Jan", "fin_year": "2023-24"}
		]`))
	})

	c := NewClient(srv.URL, time.Second)
	got, err := c.Performance(context.Background(), "Barpeta")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Mar 2023-24", first.Label())
	require.NotNil(t, first.TotalHouseholdsWorked)
	assert.EqualValues(t, 100, *first.TotalHouseholdsWorked)
	assert.Nil(t, first.TotalIndividualsWorked)
	require.NotNil(t, first.TotalExp)
	assert.InDelta(t, 1234.5, *first.TotalExp, 1e-9)
	require.NotNil(t, first.LastUpdated)

	second := got[1]
	assert.Nil(t, second.TotalHouseholdsWorked)
	assert.Nil(t, second.TotalExp)
	assert.Nil(t, second.AverageWageRate)
}

func TestPerformanceNaiveTimestamp(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"month": "Jan", "fin_year": "2023-24", "total_households_worked": 10,
			 "average_days_employment": 42, "total_hhs_completed_100_days": 7,
			 "last_updated": "2024-04-01T10:00:00.123456"},
			{"month": "Feb", "fin_year": "2023-24", "last_updated": "not a date"}
		]`))
	})

	c := NewClient(srv.URL, time.Second)
	got, err := c.Performance(context.Background(), "Barpeta")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	require.NotNil(t, first.LastUpdated)
	want := time.Date(2024, 4, 1, 10, 0, 0, 123456000, time.UTC)
	assert.True(t, want.Equal(first.LastUpdated.Time), "got %v", first.LastUpdated.Time)
	require.NotNil(t, first.AverageDaysEmployment)
	assert.EqualValues(t, 42, *first.AverageDaysEmployment)
	require.NotNil(t, first.TotalHHsCompleted100Days)
	assert.EqualValues(t, 7, *first.TotalHHsCompleted100Days)

	require.NotNil(t, got[1].LastUpdated)
	assert.True(t, got[1].LastUpdated.IsZero())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-04-01T10:00:00Z", time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-04-01T15:30:00+05:30", time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-04-01T10:00:00", time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-04-01 10:00:00.5", time.Date(2024, 4, 1, 10, 0, 0, 500000000, time.UTC)},
		{"2024-04-01", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}

	empty, err := ParseTimestamp("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestPerformanceEscapesDistrictName(t *testing.T) {
	var escaped string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		escaped = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.Performance(context.Background(), "Sri Potti/Nellore")
	require.NoError(t, err)
	assert.Equal(t, "/performance/Sri%20Potti%2FNellore/", escaped)
}

func TestPerformanceEmptyName(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.Performance(context.Background(), "   ")
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestPerformanceNotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "District not found"}`))
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.Performance(context.Background(), "Nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestServerErrorStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.Districts(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "/districts/", se.Endpoint)
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	c := NewClient(srv.URL, time.Second)
	_, err := c.Districts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Districts(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestContextCancel(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	c := NewClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Performance(ctx, "Barpeta")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCacheDisabledByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 3; i++ {
		_, err := c.Performance(context.Background(), "Barpeta")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, calls.Load())
}

func TestCacheServesRepeatedCalls(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"month": "Jan", "fin_year": "2023-24"}]`))
	})

	c := NewClient(srv.URL, time.Second, WithCacheTTL(time.Minute))
	for _, name := range []string{"Barpeta", "barpeta", "BARPETA "} {
		got, err := c.Performance(context.Background(), name)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.EqualValues(t, 1, calls.Load())

	_, err := c.Performance(context.Background(), "Bidar")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCacheSkipsFailures(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	c := NewClient(srv.URL, time.Second, WithCacheTTL(time.Minute))
	_, err := c.Districts(context.Background())
	require.Error(t, err)
	_, err = c.Districts(context.Background())
	require.NoError(t, err)
	_, err = c.Districts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDetectDistrict(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect-district/", r.URL.Path)
		assert.Equal(t, "26.32", r.URL.Query().Get("lat"))
		assert.Equal(t, "91.005", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(`{"message": "ok", "latitude": "26.32", "longitude": "91.005", "district": "Barpeta"}`))
	})

	c := NewClient(srv.URL, time.Second)
	got, err := c.DetectDistrict(context.Background(), 26.32, 91.005)
	require.NoError(t, err)
	assert.Equal(t, "Barpeta", got.District)
	assert.Equal(t, "26.32", got.Latitude)
}

func TestDetectDistrictUnresolved(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "Geolocation detected successfully", "latitude": "1", "longitude": "2", "district": null}`))
	})

	c := NewClient(srv.URL, time.Second)
	got, err := c.DetectDistrict(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, got.District)
}

func TestDistrictIDNull(t *testing.T) {
	var id DistrictID = "x"
	require.NoError(t, id.UnmarshalJSON([]byte("null")))
	assert.Equal(t, DistrictID(""), id)
	assert.Error(t, id.UnmarshalJSON([]byte("{}")))
}
