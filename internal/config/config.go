// Package config loads cpubars settings from a JSON file plus environment
// overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cpubars/internal/utils"

	"github.com/go-playground/validator/v10"
)

// Display modes.
const (
	DisplayTerminal = "terminal"
	DisplayHTML     = "html"
	DisplayBoth     = "both"
	DisplayNone     = "none"
)

// Environment overrides.
const (
	EnvPage       = "CPUBARS_PAGE"
	EnvDisplay    = "CPUBARS_DISPLAY"
	EnvViewerAddr = "CPUBARS_VIEWER_ADDR"
	EnvLogFile    = "CPUBARS_LOG_FILE"
)

var validate = validator.New()

// Duration accepts "10s" style strings or integer nanoseconds in JSON.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return perr
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config holds every runtime setting.
type Config struct {
	ConfigFile string `json:"-"`

	PageURL          string   `json:"page_url" validate:"required,url"`
	Display          string   `json:"display" validate:"oneof=terminal html both none"`
	ViewerEnabled    bool     `json:"viewer_enabled"`
	ViewerAddr       string   `json:"viewer_addr" validate:"omitempty,hostname_port"`
	LogFile          string   `json:"log_file"`
	BarWidth         int      `json:"bar_width" validate:"gte=0,lte=500"`
	HandshakeTimeout Duration `json:"handshake_timeout" validate:"gte=0"`
	ReadLimit        int64    `json:"read_limit" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		PageURL:          "http://localhost:7032/",
		Display:          DisplayTerminal,
		ViewerEnabled:    false,
		ViewerAddr:       "127.0.0.1:7033",
		BarWidth:         0,
		HandshakeTimeout: Duration(10 * time.Second),
		ReadLimit:        64 * 1024,
	}
}

// Load reads configPath over the defaults (a missing file is not an error),
// applies environment overrides and validates the result. An empty path
// uses ./cpubars.config.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(configPath) == "" {
		configPath = utils.ConfigFile()
	}
	cfg.ConfigFile = configPath

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing configuration: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.PageURL = getEnv(EnvPage, c.PageURL)
	c.Display = getEnv(EnvDisplay, c.Display)
	c.LogFile = getEnv(EnvLogFile, c.LogFile)
	if addr := os.Getenv(EnvViewerAddr); addr != "" {
		c.ViewerAddr = addr
		c.ViewerEnabled = true
	}
	if v, ok := getEnvBool("CPUBARS_VIEWER"); ok {
		c.ViewerEnabled = v
	}
}

func (c *Config) normalize() {
	c.PageURL = strings.TrimSpace(c.PageURL)
	c.Display = strings.ToLower(strings.TrimSpace(c.Display))
	c.ViewerAddr = strings.TrimSpace(c.ViewerAddr)
	c.LogFile = strings.TrimSpace(c.LogFile)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.ViewerEnabled && c.ViewerAddr == "" {
		return errors.New("invalid configuration: viewer_addr is required when viewer_enabled is set")
	}
	return nil
}

// WantsTerminal reports whether bars are drawn on the terminal.
func (c *Config) WantsTerminal() bool {
	return c.Display == DisplayTerminal || c.Display == DisplayBoth
}

// WantsHTML reports whether bars are rendered as HTML for the viewer.
func (c *Config) WantsHTML() bool {
	return c.Display == DisplayHTML || c.Display == DisplayBoth || c.ViewerEnabled
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return parsed, true
}
