package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Units     string          `mapstructure:"units"`
	Smoothing SmoothingConfig `mapstructure:"smoothing"`
	Store     StoreConfig     `mapstructure:"store"`
	GPX       GPXConfig       `mapstructure:"gpx"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SmoothingConfig struct {
	Window int `mapstructure:"window"` // seconds either side of each point
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type GPXConfig struct {
	Creator string `mapstructure:"creator"`
}

// Unit returns the configured distance unit.
func (c *Config) Unit() gpx.Unit {
	u, _ := gpx.ParseUnit(c.Units)
	return u
}

// Load reads configuration from file and environment variables. An empty
// path searches for gpxkit.yaml in the working directory and in
// $HOME/.config/gpxkit; a missing file is fine there, but an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("units", "km")
	v.SetDefault("smoothing.window", gpx.DefaultSmoothingWindow)
	v.SetDefault("store.path", filepath.Join(".", "gpxkit.db"))
	v.SetDefault("gpx.creator", gpx.DefaultCreator)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("gpxkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/gpxkit")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: GPXKIT_STORE_PATH → store.path
	v.SetEnvPrefix("GPXKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if _, err := gpx.ParseUnit(c.Units); err != nil {
		errs = append(errs, fmt.Sprintf("units: %v", err))
	}
	if c.Smoothing.Window <= 0 {
		errs = append(errs, fmt.Sprintf("smoothing.window must be positive, got %d", c.Smoothing.Window))
	}
	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
