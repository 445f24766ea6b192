// Package config defines the PH Radio configuration file and helpers for
// loading or saving it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edward-ap/phradio/internal/catalog"
)

const (
	// AppID is the stable application identifier used by fyne for preferences.
	AppID = "com.edwardap.phradio"
	// AppConfigSubdir is the directory under os.UserConfigDir holding app data.
	AppConfigSubdir = "PHRadio"
	// AppConfigName is the JSON file stored on disk.
	AppConfigName = "config.json"

	DefaultWidth          = 420
	DefaultHeight         = 720
	MinWindowWidth        = 360
	MinWindowHeight       = 480
	DefaultVolume         = 1.0
	DefaultRequestTimeout = 20
	MaxLimit              = 5000

	// BackendPreferences keeps favorites in fyne's preferences file.
	BackendPreferences = "preferences"
	// BackendSQLite keeps favorites in a SQLite database in the config dir.
	BackendSQLite = "sqlite"
)

// Config aggregates every user-facing preference persisted between sessions.
type Config struct {
	APIEndpoint       string  `json:"apiEndpoint"`
	CountryCode       string  `json:"countryCode"`
	Limit             int     `json:"limit"`
	UserAgent         string  `json:"userAgent"`
	RequestTimeoutSec int     `json:"requestTimeoutSec"`
	Volume            float64 `json:"volume"`
	LastCategory      string  `json:"lastCategory"`
	WindowW           int     `json:"windowW"`
	WindowH           int     `json:"windowH"`
	FavoritesBackend  string  `json:"favoritesBackend"`

	path string
}

// ConfigDir resolves the writable directory that holds the config file and
// the SQLite favorites database.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppConfigSubdir), nil
}

// ConfigPath returns the default location of config.json.
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppConfigName), nil
}

// Load reads the config at path, or at ConfigPath when path is empty. A
// missing file yields defaults, which are written back best effort. Fields
// absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg := newDefaultConfig()
	cfg.path = path

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = cfg.Save()
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	cfg.applyRuntimeDefaults()
	return cfg, nil
}

// Path returns the file the config is saved to.
func (c *Config) Path() string { return c.path }

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Save persists the configuration, creating directories as needed.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, b, 0o644)
}

// RequestTimeout is the catalog request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// CatalogOptions maps the config onto catalog client options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		Endpoint:    c.APIEndpoint,
		CountryCode: c.CountryCode,
		Limit:       c.Limit,
		UserAgent:   c.UserAgent,
		Timeout:     c.RequestTimeout(),
	}
}

// Defaults returns an unsaved config holding default values, bound to path.
func Defaults(path string) *Config {
	cfg := newDefaultConfig()
	cfg.path = path
	return cfg
}

func newDefaultConfig() *Config {
	cfg := &Config{
		APIEndpoint:       catalog.DefaultEndpoint,
		CountryCode:       catalog.DefaultCountryCode,
		Limit:             catalog.DefaultLimit,
		UserAgent:         catalog.DefaultUserAgent,
		RequestTimeoutSec: DefaultRequestTimeout,
		Volume:            DefaultVolume,
		LastCategory:      catalog.CategoryAll,
		WindowW:           DefaultWidth,
		WindowH:           DefaultHeight,
		FavoritesBackend:  BackendPreferences,
	}
	cfg.applyRuntimeDefaults()
	return cfg
}

// applyRuntimeDefaults normalizes values after a load so the app always
// receives sane inputs.
func (c *Config) applyRuntimeDefaults() {
	c.APIEndpoint = strings.TrimRight(strings.TrimSpace(c.APIEndpoint), "/")
	if c.APIEndpoint == "" {
		c.APIEndpoint = catalog.DefaultEndpoint
	}
	c.CountryCode = strings.ToUpper(strings.TrimSpace(c.CountryCode))
	if c.CountryCode == "" {
		c.CountryCode = catalog.DefaultCountryCode
	}
	if c.Limit <= 0 {
		c.Limit = catalog.DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = catalog.DefaultUserAgent
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = DefaultRequestTimeout
	}
	if math.IsNaN(c.Volume) || c.Volume < 0 || c.Volume > 1 {
		c.Volume = DefaultVolume
	}
	if _, ok := catalog.FindCategory(c.LastCategory); !ok {
		c.LastCategory = catalog.CategoryAll
	}
	if c.WindowW < MinWindowWidth {
		c.WindowW = MinWindowWidth
	}
	if c.WindowH < MinWindowHeight {
		c.WindowH = MinWindowHeight
	}
	switch strings.ToLower(strings.TrimSpace(c.FavoritesBackend)) {
	case BackendSQLite:
		c.FavoritesBackend = BackendSQLite
	default:
		c.FavoritesBackend = BackendPreferences
	}
}
