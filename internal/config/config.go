// Package config provides configuration loading for calpager.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/navigation"
)

// Config is the root configuration structure.
type Config struct {
	View      ViewConfig      `yaml:"view"`
	Animation AnimationConfig `yaml:"animation"`
	Sync      SyncConfig      `yaml:"sync"`
	Sources   []SourceConfig  `yaml:"sources"`
	Filters   FilterConfig    `yaml:"filters"`
}

// ViewConfig configures the paging and the time axis of the calendar view.
type ViewConfig struct {
	Granularity string  `yaml:"granularity"` // "day", "days", "three_day", "week", "work_week", "month"
	Days        int     `yaml:"days"`        // window size for "days"
	WeekStart   string  `yaml:"week_start"`  // "monday" or "sunday"
	Zoom        float64 `yaml:"zoom"`        // height per minute
	RangeStart  string  `yaml:"range_start"` // YYYY-MM-DD, optional
	RangeEnd    string  `yaml:"range_end"`   // YYYY-MM-DD, optional

	// FallbackRangeSpanDays sizes the range when none is configured.
	// Zero means 250 pages each side of today.
	FallbackRangeSpanDays int    `yaml:"fallback_range_span_days"`
	Timezone              string `yaml:"timezone"`
}

// AnimationConfig configures navigation animations.
type AnimationConfig struct {
	Duration time.Duration `yaml:"duration"`
	Curve    string        `yaml:"curve"`
}

// SyncConfig configures how sources are refreshed.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	Schedule string        `yaml:"schedule"` // cron expression; wins over interval
	Output   string        `yaml:"output"`   // optional ICS snapshot path
	Window   time.Duration `yaml:"window"`   // how far around the view to fetch
}

// SourceConfig configures a calendar source.
type SourceConfig struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"` // "ics", "caldav", "icloud"
	URL         string       `yaml:"url"`
	Username    string       `yaml:"username,omitempty"`
	Password    string       `yaml:"password,omitempty"`
	PasswordCmd string       `yaml:"password_cmd,omitempty"`
	Calendars   []string     `yaml:"calendars,omitempty"` // For CalDAV: which calendars to sync
	Filters     FilterConfig `yaml:"filters,omitempty"`   // Per-source filters
}

// FilterConfig configures event filtering.
type FilterConfig struct {
	Mode    string       `yaml:"mode"` // "or" or "and"
	Rules   []FilterRule `yaml:"rules"`
	Exclude []FilterRule `yaml:"exclude"` // any match drops the event
}

// FilterRule defines a single filter rule.
// Use exactly one of: Contains, Exact, Prefix, Suffix, or Regex.
type FilterRule struct {
	Field           string `yaml:"field"`              // "title", "organizer", "source", "description", "location"
	Contains        string `yaml:"contains,omitempty"` // Substring match
	Exact           string `yaml:"exact,omitempty"`    // Exact string match
	Prefix          string `yaml:"prefix,omitempty"`   // Starts with
	Suffix          string `yaml:"suffix,omitempty"`   // Ends with
	Regex           string `yaml:"regex,omitempty"`    // Regular expression
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

// Load reads configuration from the default location (~/.config/calpager/config.yaml).
// A missing default file yields the defaults.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}

	path := filepath.Join(configDir, "calpager", "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults, and validates configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.Sync.Output = expandPath(cfg.Sync.Output)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults sets default values for unspecified config options.
func (c *Config) applyDefaults() {
	if c.View.Granularity == "" {
		c.View.Granularity = "week"
	}
	if c.View.WeekStart == "" {
		c.View.WeekStart = "monday"
	}
	if c.View.Zoom == 0 {
		c.View.Zoom = navigation.DefaultZoom
	}
	if c.Animation.Duration == 0 {
		c.Animation.Duration = navigation.DefaultConfig().DefaultAnimationDuration
	}
	if c.Animation.Curve == "" {
		c.Animation.Curve = "ease"
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 5 * time.Minute
	}
	if c.Sync.Window == 0 {
		c.Sync.Window = 30 * 24 * time.Hour
	}
	if c.Filters.Mode == "" {
		c.Filters.Mode = "or"
	}
}

// Validate rejects settings the view cannot be built from.
func (c *Config) Validate() error {
	if _, err := c.Granularity(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if c.View.Zoom < 0 {
		return fmt.Errorf("view: %w: %v", navigation.ErrInvalidZoom, c.View.Zoom)
	}
	if c.View.FallbackRangeSpanDays < 0 {
		return fmt.Errorf("view: fallback_range_span_days must not be negative")
	}
	if _, err := c.Range(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if _, err := navigation.ParseCurve(c.Animation.Curve); err != nil {
		return fmt.Errorf("animation: %w", err)
	}
	if c.Sync.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
			return fmt.Errorf("sync: parse schedule %q: %w", c.Sync.Schedule, err)
		}
	}
	for i, s := range c.Sources {
		switch s.Type {
		case "ics", "caldav", "icloud":
		default:
			return fmt.Errorf("source %d (%s): unknown type %q", i, s.Name, s.Type)
		}
	}
	return nil
}

// Granularity resolves the configured paging policy.
func (c *Config) Granularity() (daterange.Granularity, error) {
	g, err := daterange.Parse(c.View.Granularity, c.View.Days)
	if err != nil {
		return g, err
	}
	return g.WithWeekStart(daterange.ParseWeekday(c.View.WeekStart)), nil
}

// Range returns the configured overall range, or the zero range when either
// bound is unset. range_end is inclusive of its day.
func (c *Config) Range() (daterange.Range, error) {
	if c.View.RangeStart == "" || c.View.RangeEnd == "" {
		return daterange.Range{}, nil
	}
	loc, err := c.Location()
	if err != nil {
		return daterange.Range{}, err
	}
	start, err := time.ParseInLocation(time.DateOnly, c.View.RangeStart, loc)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("parse range_start: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, c.View.RangeEnd, loc)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("parse range_end: %w", err)
	}
	return daterange.New(start, end)
}

// Location returns the configured timezone, or time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.View.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.View.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

// Navigation returns the navigation defaults derived from the config.
func (c *Config) Navigation() navigation.Config {
	curve, err := navigation.ParseCurve(c.Animation.Curve)
	if err != nil {
		curve = navigation.Ease
	}
	return navigation.Config{
		DefaultAnimationDuration: c.Animation.Duration,
		DefaultAnimationCurve:    curve,
		FallbackRangeSpanDays:    c.View.FallbackRangeSpanDays,
	}
}

// GetPassword returns the password for a source, executing password_cmd if needed.
func (s *SourceConfig) GetPassword() (string, error) {
	if s.Password != "" {
		return s.Password, nil
	}
	if s.PasswordCmd == "" {
		return "", nil
	}

	cmd := exec.Command("sh", "-c", s.PasswordCmd)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("execute password_cmd: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// parseDuration extends time.ParseDuration with day ("14d") and week ("2w")
// units.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	unit := time.Duration(0)
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		unit = 7 * 24 * time.Hour
	default:
		return time.ParseDuration(s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative", s)
	}
	return time.Duration(n) * unit, nil
}

// UnmarshalYAML implements custom unmarshaling for duration fields.
func (c *SyncConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Interval string `yaml:"interval"`
		Schedule string `yaml:"schedule"`
		Output   string `yaml:"output"`
		Window   string `yaml:"window"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	var err error
	if c.Interval, err = parseDuration(raw.Interval); err != nil {
		return fmt.Errorf("parse interval: %w", err)
	}
	if c.Window, err = parseDuration(raw.Window); err != nil {
		return fmt.Errorf("parse window: %w", err)
	}
	c.Schedule = raw.Schedule
	c.Output = raw.Output
	return nil
}

// UnmarshalYAML implements custom unmarshaling for animation config.
func (c *AnimationConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Duration string `yaml:"duration"`
		Curve    string `yaml:"curve"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	d, err := parseDuration(raw.Duration)
	if err != nil {
		return fmt.Errorf("parse animation duration: %w", err)
	}
	c.Duration = d
	c.Curve = raw.Curve
	return nil
}
