package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/sadopc/ovor/internal/geo"
)

// Prefix is prepended to every variable name, e.g. OVOR_API_BASE_URL.
const Prefix = "ovor"

// Config holds runtime configuration read from the environment.
type Config struct {
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"0s"`

	Locale string `envconfig:"LOCALE" default:"en-IN"`

	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Location pins the detected position ("lat,lon"); GeoURL points at an
	// IP geolocation endpoint. Location wins when both are set.
	Location string `envconfig:"LOCATION"`
	GeoURL   string `envconfig:"GEO_URL"`

	ExportDir string `envconfig:"EXPORT_DIR"`
}

// Load reads and validates configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Location != "" {
		if _, err := geo.ParsePosition(c.Location); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = filepath.Join(os.TempDir(), "ovor.log")
	}
	if c.ExportDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.ExportDir = home
		} else {
			c.ExportDir = "."
		}
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Language returns the parsed display locale.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Locator builds the position capability the configuration describes.
func (c *Config) Locator() geo.Locator {
	if c.Location != "" {
		if pos, err := geo.ParsePosition(c.Location); err == nil {
			return geo.Static{Pos: pos}
		}
	}
	if strings.TrimSpace(c.GeoURL) != "" {
		return geo.NewHTTPLocator(c.GeoURL, c.RequestTimeout)
	}
	return geo.Unavailable{}
}
