// Package config loads client settings from flags, SHERIA_* environment
// variables and an optional sheria.yaml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyDB          = "db"
	KeyAPIURL      = "api_url"
	KeyHTTPTimeout = "http_timeout"
	KeyLogLevel    = "log_level"
	KeyLogPretty   = "log_pretty"
	KeyFormat      = "format"
	KeyEphemeral   = "ephemeral"
)

// Config holds all client configuration.
type Config struct {
	DBPath      string
	APIURL      string
	HTTPTimeout time.Duration
	LogLevel    string
	LogPretty   bool
	Format      string // "json" or "text"
	Ephemeral   bool   // keep state in memory only
}

// DefaultDBPath is ~/.sheria/state.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sheria", "state.db")
}

// New returns a viper instance with defaults, env binding and config file
// search paths set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, DefaultDBPath())
	v.SetDefault(KeyAPIURL, "http://localhost:8000/api")
	v.SetDefault(KeyHTTPTimeout, 60*time.Second)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogPretty, false)
	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyEphemeral, false)

	v.SetEnvPrefix("SHERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("sheria")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("$HOME", ".sheria"))
	v.AddConfigPath(".")
	return v
}

// Load reads the optional config file and returns the validated settings.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:      v.GetString(KeyDB),
		APIURL:      strings.TrimRight(v.GetString(KeyAPIURL), "/"),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		LogLevel:    v.GetString(KeyLogLevel),
		LogPretty:   v.GetBool(KeyLogPretty),
		Format:      strings.ToLower(v.GetString(KeyFormat)),
		Ephemeral:   v.GetBool(KeyEphemeral),
	}

	if cfg.Format != "json" && cfg.Format != "text" {
		return nil, fmt.Errorf("invalid format %q (valid: json, text)", cfg.Format)
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("invalid http timeout %s", cfg.HTTPTimeout)
	}
	if !cfg.Ephemeral && cfg.DBPath == "" {
		return nil, fmt.Errorf("db path is required")
	}
	return cfg, nil
}
