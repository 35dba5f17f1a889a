package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config is the hireboard client configuration.
type Config struct {
	APIURL            string        `key:"api_url" validate:"required"`
	RequestTimeout    time.Duration `key:"request_timeout" validate:"gt=0"`
	MaxRetries        int           `key:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay         time.Duration `key:"base_delay" validate:"gte=0"`
	MaxDelay          time.Duration `key:"max_delay" validate:"gtefield=BaseDelay"`
	CircuitBreaker    bool          `key:"circuit_breaker"`
	FailureThreshold  uint32        `key:"failure_threshold" validate:"gt=0"`
	RecoveryTimeout   time.Duration `key:"recovery_timeout" validate:"gt=0"`
	RequestsPerSecond float64       `key:"requests_per_second" validate:"gte=0"`
	StorePath         string        `key:"store_path" validate:"required"`
	PrefsPath         string        `key:"prefs_path" validate:"required"`
	ReseedWindow      time.Duration `key:"reseed_window" validate:"gt=0"`
	PollInterval      time.Duration `key:"poll_interval" validate:"gt=0"`
	LogLevel          string        `key:"log_level"`
	LogFormat         string        `key:"log_format" validate:"oneof=text json"`
	LogFile           string        `key:"log_file"`
	MetricsAddr       string        `key:"metrics_addr"`
}

const (
	defaultConfigPath = "~/.config/hireboard/config.toml"
	defaultDataDir    = "~/.local/share/hireboard"
	defaultPrefsPath  = "~/.config/hireboard/prefs.toml"
	defaultAPIURL     = "http://127.0.0.1:8080"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:            defaultAPIURL,
		RequestTimeout:    30 * time.Second,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          10 * time.Second,
		CircuitBreaker:    true,
		FailureThreshold:  5,
		RecoveryTimeout:   60 * time.Second,
		RequestsPerSecond: 20,
		StorePath:         mustExpand(defaultDataDir + "/db"),
		PrefsPath:         mustExpand(defaultPrefsPath),
		ReseedWindow:      5 * time.Minute,
		PollInterval:      5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// fileConfig mirrors the TOML file. Pointers distinguish an absent key from
// an explicit zero.
type fileConfig struct {
	APIURL            string   `toml:"api_url"`
	RequestTimeout    string   `toml:"request_timeout"`
	MaxRetries        *int     `toml:"max_retries"`
	BaseDelay         string   `toml:"base_delay"`
	MaxDelay          string   `toml:"max_delay"`
	CircuitBreaker    *bool    `toml:"circuit_breaker"`
	FailureThreshold  *uint32  `toml:"failure_threshold"`
	RecoveryTimeout   string   `toml:"recovery_timeout"`
	RequestsPerSecond *float64 `toml:"requests_per_second"`
	StorePath         string   `toml:"store_path"`
	PrefsPath         string   `toml:"prefs_path"`
	ReseedWindow      string   `toml:"reseed_window"`
	PollInterval      string   `toml:"poll_interval"`
	LogLevel          string   `toml:"log_level"`
	LogFormat         string   `toml:"log_format"`
	LogFile           string   `toml:"log_file"`
	MetricsAddr       string   `toml:"metrics_addr"`
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. Present but invalid values are errors naming their key.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(raw fileConfig) error {
	setString(&c.APIURL, raw.APIURL)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.LogFormat, raw.LogFormat)
	setString(&c.MetricsAddr, raw.MetricsAddr)
	if v := strings.TrimSpace(raw.StorePath); v != "" {
		c.StorePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.PrefsPath); v != "" {
		c.PrefsPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}

	if raw.MaxRetries != nil {
		c.MaxRetries = *raw.MaxRetries
	}
	if raw.CircuitBreaker != nil {
		c.CircuitBreaker = *raw.CircuitBreaker
	}
	if raw.FailureThreshold != nil {
		c.FailureThreshold = *raw.FailureThreshold
	}
	if raw.RequestsPerSecond != nil {
		c.RequestsPerSecond = *raw.RequestsPerSecond
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &c.RequestTimeout},
		{"base_delay", raw.BaseDelay, &c.BaseDelay},
		{"max_delay", raw.MaxDelay, &c.MaxDelay},
		{"recovery_timeout", raw.RecoveryTimeout, &c.RecoveryTimeout},
		{"reseed_window", raw.ReseedWindow, &c.ReseedWindow},
		{"poll_interval", raw.PollInterval, &c.PollInterval},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.raw)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("key")
	})
	return v
}()

// Validate reports the first invalid setting by its file key.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config log_level: %w", err)
	}
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("config %s: invalid value %v (%s)", fe.Field(), fe.Value(), fe.Tag())
	}
	return err
}

// LogPath returns the log file, or the default file under the data directory
// when none is configured.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return c.LogFile
	}
	return mustExpand(defaultDataDir + "/hireboard.log")
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
