package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 15 * time.Second
	cacheKeyDistrict = "districts"
)

// ErrNotFound is returned when the backend answers 404, e.g. for an unknown
// district name.
var ErrNotFound = errors.New("api: not found")

// StatusError reports a non-success HTTP status other than 404.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s returned status %d", e.Endpoint, e.Code)
}

// Client talks to the MGNREGA backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	cache   *cache.Cache
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCacheTTL keeps successful responses for ttl. A zero ttl disables
// caching so every call reaches the backend.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// NewClient builds a client for the API rooted at baseURL
// (e.g. http://localhost:8000/api).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Districts lists every district known to the backend.
func (c *Client) Districts(ctx context.Context) ([]District, error) {
	if v, ok := c.cached(cacheKeyDistrict); ok {
		return v.([]District), nil
	}
	var out []District
	if err := c.getJSON(ctx, "/districts/", nil, &out); err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	c.store(cacheKeyDistrict, out)
	return out, nil
}

// Performance returns the monthly records for the named district, in the
// order the backend sent them.
func (c *Client) Performance(ctx context.Context, districtName string) ([]PerformanceRecord, error) {
	name := strings.TrimSpace(districtName)
	if name == "" {
		return nil, errors.New("performance: empty district name")
	}
	key := "performance:" + strings.ToLower(name)
	if v, ok := c.cached(key); ok {
		return v.([]PerformanceRecord), nil
	}
	var out []PerformanceRecord
	if err := c.getJSON(ctx, "/performance/"+url.PathEscape(name)+"/", nil, &out); err != nil {
		return nil, fmt.Errorf("performance for %q: %w", name, err)
	}
	c.store(key, out)
	return out, nil
}

// DetectDistrict asks the backend to resolve coordinates to a district.
func (c *Client) DetectDistrict(ctx context.Context, lat, lon float64) (DetectedDistrict, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var resp detectResponse
	if err := c.getJSON(ctx, "/detect-district/", q, &resp); err != nil {
		return DetectedDistrict{}, fmt.Errorf("detect district: %w", err)
	}
	out := DetectedDistrict{Latitude: resp.Latitude, Longitude: resp.Longitude}
	if resp.District != nil {
		out.District = strings.TrimSpace(*resp.District)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return &StatusError{Endpoint: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) store(key string, v any) {
	if c.cache == nil {
		return
	}
	c.cache.SetDefault(key, v)
}
