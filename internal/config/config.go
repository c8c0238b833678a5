// Package config loads the autoloc client configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
)

// Config holds the client settings. Every field can be set from the environment.
type Config struct {
	Environment string        `env:"ENVIRONMENT,default=dev"`
	LogLevel    string        `env:"LOG_LEVEL,default=info"`
	LogFile     string        `env:"LOG_FILE"` // when set, logs are written to a rotated file instead of stderr
	APIBaseURL  string        `env:"API_BASE_URL,default=http://localhost:8000/api"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s"`

	TokenFile    string `env:"TOKEN_FILE,default=.autoloc/tokens.json"`
	SettingsFile string `env:"SETTINGS_FILE,default=.autoloc/preferences.json"`
	DownloadDir  string `env:"DOWNLOAD_DIR,default=."`

	// position source for geolocation: an IP geolocation endpoint, or fixed coordinates
	GeoProviderURL string `env:"GEO_PROVIDER_URL"`
	GeoLatitude    string `env:"GEO_LATITUDE"`
	GeoLongitude   string `env:"GEO_LONGITUDE"`

	latitude, longitude float64
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// NewConfig reads the environment and validates the result
func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid LOG_LEVEL '%s'. Valid levels: debug, info, warn, error", cfg.LogLevel)
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.ParseRequestURI(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", cfg.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https: %s", cfg.APIBaseURL)
	}
	if cfg.Environment == "prod" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use https in production: %s", cfg.APIBaseURL)
	}

	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %v", cfg.HTTPTimeout)
	}

	if (cfg.GeoLatitude == "") != (cfg.GeoLongitude == "") {
		return fmt.Errorf("GEO_LATITUDE and GEO_LONGITUDE must be set together")
	}
	if cfg.GeoLatitude != "" {
		cfg.latitude, err = strconv.ParseFloat(cfg.GeoLatitude, 64)
		if err != nil || cfg.latitude < -90 || cfg.latitude > 90 {
			return fmt.Errorf("GEO_LATITUDE must be a number between -90 and 90, got %s", cfg.GeoLatitude)
		}
		cfg.longitude, err = strconv.ParseFloat(cfg.GeoLongitude, 64)
		if err != nil || cfg.longitude < -180 || cfg.longitude > 180 {
			return fmt.Errorf("GEO_LONGITUDE must be a number between -180 and 180, got %s", cfg.GeoLongitude)
		}
	}

	if cfg.GeoProviderURL != "" {
		if _, err := url.ParseRequestURI(cfg.GeoProviderURL); err != nil {
			return fmt.Errorf("GEO_PROVIDER_URL is not a valid URL: %s", cfg.GeoProviderURL)
		}
	}

	return nil
}

// FixedPosition returns the coordinates set with GEO_LATITUDE/GEO_LONGITUDE
func (c *Config) FixedPosition() (latitude, longitude float64, ok bool) {
	if c.GeoLatitude == "" {
		return 0, 0, false
	}
	return c.latitude, c.longitude, true
}
