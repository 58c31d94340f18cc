package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. RV_DB_PATH
const EnvPrefix = "RV"

// Config keys, shared with the command line flags
const (
	KeyPort          = "port"
	KeyDBPath        = "db-path"
	KeyKeepSnapshots = "keep-snapshots"
	KeyJWTSecret     = "jwt-secret"
	KeyAllowDefault  = "allow-default-secret"
	KeySegmentsURL   = "segments-url"
	KeyStationsURL   = "stations-url"
	KeyHTTPTimeout   = "http-timeout"
	KeyAutoImport    = "auto-import"
	KeyReferenceYear = "reference-year"
	KeyWindowStart   = "window-start"
	KeyWindowEnd     = "window-end"
	KeyWindowSize    = "window-size"
	KeyRateLimit     = "rate-limit"
	KeyRateWindow    = "rate-window"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
)

// Config 应用配置
type Config struct {
	Port          string
	DBPath        string
	KeepSnapshots int // Stored snapshots kept after an import
	JWTSecret     string
	AllowDefault  bool // Accept the built-in JWT secret (local development)

	// Upstream datasets
	SegmentsURL string
	StationsURL string
	HTTPTimeout time.Duration
	AutoImport  bool // Import on startup when the store is empty

	// Derived figures
	ReferenceYear int
	WindowStart   int
	WindowEnd     int
	WindowSize    int

	// Rate limiting per client
	RateLimit  int
	RateWindow time.Duration

	LogLevel  string
	LogFormat string // json or text
}

const defaultJWTSecret = "change-me-in-production"

// SetDefaults registers default values and environment binding on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, ":8080")
	v.SetDefault(KeyDBPath, "./data/renovacio.db")
	v.SetDefault(KeyKeepSnapshots, 5)
	v.SetDefault(KeyJWTSecret, defaultJWTSecret)
	v.SetDefault(KeyAllowDefault, false)
	v.SetDefault(KeySegmentsURL, "https://raw.githubusercontent.com/cvazquezfgc/planificacio-renovacio-via/main/resum.json")
	v.SetDefault(KeyStationsURL, "https://raw.githubusercontent.com/cvazquezfgc/planificacio-renovacio-via/main/estacions.json")
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyAutoImport, true)
	v.SetDefault(KeyReferenceYear, 2025)
	v.SetDefault(KeyWindowStart, 1995)
	v.SetDefault(KeyWindowEnd, 2069)
	v.SetDefault(KeyWindowSize, 5)
	v.SetDefault(KeyRateLimit, 120)
	v.SetDefault(KeyRateWindow, time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load 加载配置
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString(KeyPort),
		DBPath:        v.GetString(KeyDBPath),
		KeepSnapshots: v.GetInt(KeyKeepSnapshots),
		JWTSecret:     v.GetString(KeyJWTSecret),
		AllowDefault:  v.GetBool(KeyAllowDefault),
		SegmentsURL:   v.GetString(KeySegmentsURL),
		StationsURL:   v.GetString(KeyStationsURL),
		HTTPTimeout:   v.GetDuration(KeyHTTPTimeout),
		AutoImport:    v.GetBool(KeyAutoImport),
		ReferenceYear: v.GetInt(KeyReferenceYear),
		WindowStart:   v.GetInt(KeyWindowStart),
		WindowEnd:     v.GetInt(KeyWindowEnd),
		WindowSize:    v.GetInt(KeyWindowSize),
		RateLimit:     v.GetInt(KeyRateLimit),
		RateWindow:    v.GetDuration(KeyRateWindow),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.SegmentsURL == "" || c.StationsURL == "" {
		return fmt.Errorf("dataset sources must not be empty")
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.WindowEnd < c.WindowStart {
		return fmt.Errorf("window end %d before window start %d", c.WindowEnd, c.WindowStart)
	}
	if c.KeepSnapshots < 1 {
		return fmt.Errorf("keep-snapshots must be at least 1, got %d", c.KeepSnapshots)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

// DefaultSecret reports whether the JWT secret was left at its default
func (c *Config) DefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// TokensEnabled reports whether operator tokens may be issued and accepted.
// The built-in secret is public, so it needs AllowDefault.
func (c *Config) TokensEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != "" && (!c.DefaultSecret() || c.AllowDefault)
}
