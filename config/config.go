package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"sky-archive/photo"
	"sky-archive/renderer"
	"sky-archive/sky"
	"sky-archive/timeline"
	"sky-archive/transition"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "skyarchive.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all sky archive configuration.
type Config struct {
	Renderer   RendererConfig   `yaml:"renderer"`
	Timeline   TimelineConfig   `yaml:"timeline"`
	Transition TransitionConfig `yaml:"transition"`
	Sky        SkyConfig        `yaml:"sky"`
	Photo      PhotoConfig      `yaml:"photo"`
	Autoplay   AutoplayConfig   `yaml:"autoplay"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RendererConfig selects the back-end and the output surface.
type RendererConfig struct {
	Backend    string `yaml:"backend"` // procedural, photo
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Workers    int    `yaml:"workers"` // software canvas bands, 0 = one per CPU
}

type TimelineConfig struct {
	TotalDays int    `yaml:"total_days"`
	Locale    string `yaml:"locale"` // en, cs
	StartDay  int    `yaml:"start_day"`
}

type TransitionConfig struct {
	Duration string `yaml:"duration"`
	Easing   string `yaml:"easing"` // smoothstep, linear, cubic, quad
	Policy   string `yaml:"policy"` // retarget, ignore, restart
}

// SkyConfig tunes the procedural sky. The time-of-day thresholds vary
// between captures, so they are configurable.
type SkyConfig struct {
	DayCycleRate   float32 `yaml:"day_cycle_rate"`
	DawnEnd        float32 `yaml:"dawn_end"`
	DayEnd         float32 `yaml:"day_end"`
	NightStart     float32 `yaml:"night_start"`
	NightEnd       float32 `yaml:"night_end"`
	MaxSteps       int     `yaml:"max_steps"`
	PhaseG         float32 `yaml:"phase_g"`
	IntensityBoost float32 `yaml:"intensity_boost"`
	IntensityDecay float32 `yaml:"intensity_decay"`
	// FixedTimeOfDay pins the sun when in [0,1); -1 lets it run.
	FixedTimeOfDay float32 `yaml:"fixed_time_of_day"`
	Seed           uint64  `yaml:"seed"`
}

type PhotoConfig struct {
	Dir        string  `yaml:"dir"`
	Pattern    string  `yaml:"pattern"`
	Count      int     `yaml:"count"`
	First      int     `yaml:"first"`
	Mapping    string  `yaml:"mapping"` // modulo, seasonal
	ColorShift float32 `yaml:"color_shift"`
	Vignette   bool    `yaml:"vignette"`
	Watch      bool    `yaml:"watch"`
}

type AutoplayConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	s := sky.DefaultSettings()
	a := photo.DefaultAssetSet()
	g := photo.DefaultGrading()
	return &Config{
		Renderer: RendererConfig{
			Backend: string(renderer.KindProcedural),
			Width:   1280,
			Height:  720,
			VSync:   true,
		},
		Timeline: TimelineConfig{
			TotalDays: timeline.TotalDays,
			Locale:    string(timeline.LocaleEnglish),
		},
		Transition: TransitionConfig{
			Duration: "1s",
			Easing:   "smoothstep",
			Policy:   transition.PolicyRetarget.String(),
		},
		Sky: SkyConfig{
			DayCycleRate:   s.DayCycleRate,
			DawnEnd:        s.Thresholds.DawnEnd,
			DayEnd:         s.Thresholds.DayEnd,
			NightStart:     s.Thresholds.NightAfter,
			NightEnd:       s.Thresholds.NightBefore,
			MaxSteps:       s.MaxSteps,
			PhaseG:         s.PhaseG,
			IntensityBoost: 2.0,
			IntensityDecay: 0.01,
			FixedTimeOfDay: -1,
			Seed:           s.Seed,
		},
		Photo: PhotoConfig{
			Dir:        a.Dir,
			Pattern:    a.Pattern,
			Count:      a.Count,
			First:      a.First,
			Mapping:    a.Mapping.String(),
			ColorShift: g.ColorShift,
			Vignette:   g.Vignette,
		},
		Autoplay: AutoplayConfig{
			Interval: "2s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

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

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SKYARCHIVE_BACKEND"); v != "" {
		c.Renderer.Backend = v
	}
	if v := os.Getenv("SKYARCHIVE_IMAGES"); v != "" {
		c.Photo.Dir = v
	}
	if v := os.Getenv("SKYARCHIVE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SKYARCHIVE_DAY"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			c.Timeline.StartDay = d
		}
	}
}

// GetTransitionDuration returns the transition duration, 1s when unset or
// unparsable.
func (c *Config) GetTransitionDuration() time.Duration {
	d, err := time.ParseDuration(c.Transition.Duration)
	if err != nil || d < 0 {
		return time.Second
	}
	return d
}

// GetAutoplayInterval returns the autoplay interval, 2s when unset or
// unparsable.
func (c *Config) GetAutoplayInterval() time.Duration {
	d, err := time.ParseDuration(c.Autoplay.Interval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// Validate reports every problem at once, each wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := renderer.ParseKind(c.Renderer.Backend); err != nil {
		bad("renderer.backend: %v", err)
	}
	if c.Renderer.Width <= 0 || c.Renderer.Height <= 0 {
		bad("renderer size %dx%d must be positive", c.Renderer.Width, c.Renderer.Height)
	}
	if c.Renderer.Workers < 0 {
		bad("renderer.workers must not be negative")
	}
	if c.Timeline.TotalDays != 0 && c.Timeline.TotalDays != timeline.TotalDays {
		bad("timeline.total_days must be %d, got %d", timeline.TotalDays, c.Timeline.TotalDays)
	}
	if _, err := time.ParseDuration(c.Transition.Duration); err != nil {
		bad("transition.duration: %v", err)
	}
	if _, err := transition.EasingByName(c.Transition.Easing); err != nil {
		bad("transition.easing: %v", err)
	}
	if _, err := transition.ParsePolicy(c.Transition.Policy); err != nil {
		bad("transition.policy: %v", err)
	}

	s := c.Sky
	if !(0 < s.DawnEnd && s.DawnEnd < s.DayEnd && s.DayEnd < 1) {
		bad("sky thresholds need 0 < dawn_end < day_end < 1, got %v and %v", s.DawnEnd, s.DayEnd)
	}
	if !(0 <= s.NightEnd && s.NightEnd < s.NightStart && s.NightStart <= 1) {
		bad("sky night needs night_end < night_start in [0,1], got %v and %v", s.NightEnd, s.NightStart)
	}
	if s.MaxSteps <= 0 || s.MaxSteps > 100 {
		bad("sky.max_steps must be in 1..100, got %d", s.MaxSteps)
	}
	if s.PhaseG <= -1 || s.PhaseG >= 1 {
		bad("sky.phase_g must be in (-1,1), got %v", s.PhaseG)
	}
	if s.DayCycleRate < 0 {
		bad("sky.day_cycle_rate must not be negative")
	}

	if _, err := photo.ParseMapping(c.Photo.Mapping); err != nil {
		bad("photo.mapping: %v", err)
	}
	if err := c.assetSet().Validate(); err != nil {
		bad("%v", err)
	}
	if _, err := time.ParseDuration(c.Autoplay.Interval); err != nil {
		bad("autoplay.interval: %v", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("logging.level %q", c.Logging.Level)
	}
	return errors.Join(errs...)
}

func (c *Config) assetSet() photo.AssetSet {
	m, _ := photo.ParseMapping(c.Photo.Mapping)
	return photo.AssetSet{
		Dir:     c.Photo.Dir,
		Pattern: c.Photo.Pattern,
		Count:   c.Photo.Count,
		First:   c.Photo.First,
		Mapping: m,
	}
}

// SkySettings converts the sky section.
func (c *Config) SkySettings() sky.Settings {
	s := sky.DefaultSettings()
	s.DayCycleRate = c.Sky.DayCycleRate
	s.Thresholds = sky.Thresholds{
		DawnEnd:     c.Sky.DawnEnd,
		DayEnd:      c.Sky.DayEnd,
		NightBefore: c.Sky.NightEnd,
		NightAfter:  c.Sky.NightStart,
	}
	s.MaxSteps = c.Sky.MaxSteps
	s.PhaseG = c.Sky.PhaseG
	s.Seed = c.Sky.Seed
	return s
}

// RendererSettings converts everything the renderers need.
func (c *Config) RendererSettings() renderer.Settings {
	return renderer.Settings{
		Sky:            c.SkySettings(),
		FixedTimeOfDay: c.Sky.FixedTimeOfDay,
		Assets:         c.assetSet(),
		Grading: photo.Grading{
			ColorShift: c.Photo.ColorShift,
			Vignette:   c.Photo.Vignette,
		},
		Watch: c.Photo.Watch,
	}
}

// EngineOptions converts the timeline, transition and interaction settings.
// Validate first; unparsable names fall back to the defaults.
func (c *Config) EngineOptions() renderer.EngineOptions {
	opt := renderer.DefaultEngineOptions()
	opt.Transition.Duration = c.GetTransitionDuration()
	if e, err := transition.EasingByName(c.Transition.Easing); err == nil {
		opt.Transition.Easing = e
	}
	if p, err := transition.ParsePolicy(c.Transition.Policy); err == nil {
		opt.Transition.Policy = p
	}
	opt.Locale = timeline.Locale(c.Timeline.Locale)
	opt.StartDay = c.Timeline.StartDay
	opt.IntensityBoost = c.Sky.IntensityBoost
	opt.IntensityDecay = c.Sky.IntensityDecay
	opt.AutoplayInterval = c.GetAutoplayInterval()
	return opt
}
