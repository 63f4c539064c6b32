// Package config loads timebox settings from defaults, an optional YAML file
// and TIMEBOX_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pfrederiksen/timebox/internal/browser"
	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/harvest"
	"github.com/pfrederiksen/timebox/internal/timetable"
)

// EnvPrefix prefixes environment overrides: harvest.settle_delay is read
// from TIMEBOX_HARVEST_SETTLE_DELAY.
const EnvPrefix = "TIMEBOX"

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete timebox configuration.
type Config struct {
	Capture   CaptureConfig   `mapstructure:"capture"`
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Export    ExportConfig    `mapstructure:"export"`
	Timetable TimetableConfig `mapstructure:"timetable"`
	Log       LogConfig       `mapstructure:"log"`
}

// CaptureConfig selects the intercepted endpoint.
type CaptureConfig struct {
	EndpointMarker string        `mapstructure:"endpoint_marker"`
	FieldKey       string        `mapstructure:"field_key"`
	ArmTimeout     time.Duration `mapstructure:"arm_timeout"`
}

// HarvestConfig tunes the grid sweep.
type HarvestConfig struct {
	SettleDelay      time.Duration `mapstructure:"settle_delay"`
	Overlap          float64       `mapstructure:"overlap"`
	MaxIterations    int           `mapstructure:"max_iterations"`
	StableIterations int           `mapstructure:"stable_iterations"`
	MinColumns       int           `mapstructure:"min_columns"`
	RowContainer     string        `mapstructure:"row_container"`
	ScrollArea       string        `mapstructure:"scroll_area"`
	RowSelector      string        `mapstructure:"row_selector"`
	ScheduleCell     string        `mapstructure:"schedule_cell"`
}

// BrowserConfig selects the Chrome instance and portal page.
type BrowserConfig struct {
	RemoteURL       string        `mapstructure:"remote_url"`
	Headless        bool          `mapstructure:"headless"`
	Stealth         bool          `mapstructure:"stealth"`
	PageURL         string        `mapstructure:"page_url"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout"`
}

// ExportConfig sets where exports are written.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// TimetableConfig sets the default axis.
type TimetableConfig struct {
	AxisStart int `mapstructure:"axis_start"`
	AxisEnd   int `mapstructure:"axis_end"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("capture.endpoint_marker", capture.DefaultEndpointMarker)
	v.SetDefault("capture.field_key", capture.DefaultFieldKey)
	v.SetDefault("capture.arm_timeout", capture.DefaultArmTimeout)

	v.SetDefault("harvest.settle_delay", harvest.DefaultSettleDelay)
	v.SetDefault("harvest.overlap", harvest.DefaultOverlap)
	v.SetDefault("harvest.max_iterations", harvest.DefaultMaxIterations)
	v.SetDefault("harvest.stable_iterations", harvest.DefaultStableIterations)
	v.SetDefault("harvest.min_columns", harvest.DefaultMinColumns)
	v.SetDefault("harvest.row_container", harvest.DefaultRowContainer)
	v.SetDefault("harvest.scroll_area", harvest.DefaultScrollArea)
	v.SetDefault("harvest.row_selector", harvest.DefaultRowSelector)
	v.SetDefault("harvest.schedule_cell", harvest.DefaultScheduleCell)

	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.page_url", "")
	v.SetDefault("browser.navigate_timeout", browser.DefaultNavigateTimeout)

	v.SetDefault("export.dir", "~/.local/share/timebox")

	v.SetDefault("timetable.axis_start", timetable.DefaultAxisStart)
	v.SetDefault("timetable.axis_end", timetable.DefaultAxisEnd)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from path, or from timebox.yaml in the working
// directory or ~/.config/timebox when path is empty.
func Load(path string) (*Config, error) {
	return LoadFrom(viper.New(), path)
}

// LoadFrom is Load on a caller-supplied viper, typically one with command
// flags already bound.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("timebox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/timebox")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the sweep, capture or timetable cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Capture.EndpointMarker == "":
		return fmt.Errorf("%w: capture.endpoint_marker is empty", ErrInvalid)
	case c.Capture.FieldKey == "":
		return fmt.Errorf("%w: capture.field_key is empty", ErrInvalid)
	case c.Capture.ArmTimeout <= 0:
		return fmt.Errorf("%w: capture.arm_timeout must be positive", ErrInvalid)
	case c.Harvest.SettleDelay < 0:
		return fmt.Errorf("%w: harvest.settle_delay is negative", ErrInvalid)
	case c.Harvest.Overlap < 0:
		return fmt.Errorf("%w: harvest.overlap is negative", ErrInvalid)
	case c.Harvest.MaxIterations <= 0:
		return fmt.Errorf("%w: harvest.max_iterations must be positive", ErrInvalid)
	case c.Harvest.StableIterations <= 0:
		return fmt.Errorf("%w: harvest.stable_iterations must be positive", ErrInvalid)
	case c.Timetable.AxisStart < 0 || c.Timetable.AxisEnd > 24:
		return fmt.Errorf("%w: timetable axis must lie within 0..24", ErrInvalid)
	case c.Timetable.AxisStart >= c.Timetable.AxisEnd:
		return fmt.Errorf("%w: timetable.axis_start must be before timetable.axis_end", ErrInvalid)
	}
	return nil
}

// InterceptorConfig returns the interceptor configuration.
func (c *Config) InterceptorConfig() capture.Config {
	return capture.Config{
		EndpointMarker: c.Capture.EndpointMarker,
		FieldKey:       c.Capture.FieldKey,
	}
}

// HarvestOptions returns the sweep options.
func (c *Config) HarvestOptions() harvest.Options {
	return harvest.Options{
		SettleDelay:      c.Harvest.SettleDelay,
		Overlap:          c.Harvest.Overlap,
		MaxIterations:    c.Harvest.MaxIterations,
		StableIterations: c.Harvest.StableIterations,
		MinColumns:       c.Harvest.MinColumns,
	}
}

// GridSelectors returns the selectors locating the results grid.
func (c *Config) GridSelectors() browser.GridSelectors {
	return browser.GridSelectors{
		RowContainer: c.Harvest.RowContainer,
		ScrollArea:   c.Harvest.ScrollArea,
		RowSelector:  c.Harvest.RowSelector,
		ScheduleCell: c.Harvest.ScheduleCell,
	}
}

// BrowserSession returns the browser session configuration.
func (c *Config) BrowserSession() browser.Config {
	return browser.Config{
		RemoteURL:       c.Browser.RemoteURL,
		Headless:        c.Browser.Headless,
		Stealth:         c.Browser.Stealth,
		PageURL:         c.Browser.PageURL,
		NavigateTimeout: c.Browser.NavigateTimeout,
	}
}

// TimetableOptions returns the timetable axis options.
func (c *Config) TimetableOptions() timetable.Options {
	return timetable.Options{
		AxisStart: c.Timetable.AxisStart,
		AxisEnd:   c.Timetable.AxisEnd,
	}
}
