package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultDataSource = "https://raw.githubusercontent.com/iAyon/2025_NYC_Payroll/main/Data/d3_data.csv"

// Config holds all payrollpie configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Chart  ChartConfig  `yaml:"chart"`
	Slider SliderConfig `yaml:"slider"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DataConfig points at the payroll CSV, a local path or an http(s) URL.
type DataConfig struct {
	Source       string `yaml:"source"`
	FetchTimeout string `yaml:"fetch_timeout"`
}

type ChartConfig struct {
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	Margin         int    `yaml:"margin"`
	LabelFontSize  int    `yaml:"label_font_size"`
	Transition     string `yaml:"transition"`
	Frames         int    `yaml:"frames"`
	TooltipFadeIn  string `yaml:"tooltip_fade_in"`
	TooltipFadeOut string `yaml:"tooltip_fade_out"`
}

// SliderConfig bounds the year slider. Zero Min/Max use the dataset's years.
type SliderConfig struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Step int `yaml:"step"`
}

type CacheConfig struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
}

type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "5s",
			WriteTimeout:    "10s",
			ShutdownTimeout: "10s",
		},
		Data: DataConfig{
			Source:       DefaultDataSource,
			FetchTimeout: "2m",
		},
		Chart: ChartConfig{
			Width:          450,
			Height:         450,
			Margin:         40,
			LabelFontSize:  14,
			Transition:     "750ms",
			Frames:         24,
			TooltipFadeIn:  "200ms",
			TooltipFadeOut: "500ms",
		},
		Slider: SliderConfig{Step: 1},
		Cache: CacheConfig{
			NumCounters: 1000,
			MaxCost:     10000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if src := os.Getenv("PAYROLL_DATA_SOURCE"); src != "" {
		c.Data.Source = src
	}
	if lvl := os.Getenv("PAYROLL_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Data.Source == "" {
		errs = append(errs, errors.New("data.source is required"))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		errs = append(errs, errors.New("chart.width and chart.height must be positive"))
	}
	if c.Chart.Margin < 0 || 2*c.Chart.Margin >= min(c.Chart.Width, c.Chart.Height) {
		errs = append(errs, errors.New("chart.margin leaves no room for the pie"))
	}
	if c.Slider.Step <= 0 {
		errs = append(errs, errors.New("slider.step must be positive"))
	}
	if c.Slider.Min != 0 && c.Slider.Max != 0 && c.Slider.Max < c.Slider.Min {
		errs = append(errs, errors.New("slider.max must not be below slider.min"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	for name, d := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"data.fetch_timeout":      c.Data.FetchTimeout,
		"chart.transition":        c.Chart.Transition,
		"chart.tooltip_fade_in":   c.Chart.TooltipFadeIn,
		"chart.tooltip_fade_out":  c.Chart.TooltipFadeOut,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func parseOr(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func (c *Config) GetReadTimeout() time.Duration {
	return parseOr(c.Server.ReadTimeout, 5*time.Second)
}

func (c *Config) GetWriteTimeout() time.Duration {
	return parseOr(c.Server.WriteTimeout, 10*time.Second)
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return parseOr(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) GetFetchTimeout() time.Duration {
	return parseOr(c.Data.FetchTimeout, 2*time.Minute)
}

func (c *Config) GetTransition() time.Duration {
	return parseOr(c.Chart.Transition, 750*time.Millisecond)
}

func (c *Config) GetTooltipFadeIn() time.Duration {
	return parseOr(c.Chart.TooltipFadeIn, 200*time.Millisecond)
}

func (c *Config) GetTooltipFadeOut() time.Duration {
	return parseOr(c.Chart.TooltipFadeOut, 500*time.Millisecond)
}
