package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/i474232898/weather-clock/internal/render"
	"github.com/i474232898/weather-clock/internal/weather"
	"github.com/i474232898/weather-clock/internal/weather/providers"
)

// DefaultPath is where the run command looks for its configuration.
const DefaultPath = "weather_clock.ini"

// ErrNoConfigFile is returned alongside the defaults when the file is absent.
var ErrNoConfigFile = errors.New("config file not found")

var validate = validator.New()

type AppConfig struct {
	Weather WeatherConfig
	Display DisplayConfig
	Status  StatusConfig
}

type WeatherConfig struct {
	APIKey   string
	ZipCode  string
	Endpoint string `validate:"required,url"`

	PollInterval   time.Duration `validate:"gt=0"`
	BackoffFloor   time.Duration `validate:"gt=0,ltefield=BackoffCap"`
	BackoffCap     time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

type DisplayConfig struct {
	TempUnit          weather.Unit  `validate:"oneof=F C"`
	TimeFormat        int           `validate:"oneof=12 24"`
	TextCycleInterval time.Duration `validate:"gt=0"`

	AutoBrightness     bool
	ManualBrightness   int           `validate:"min=0,max=100"`
	MinBrightness      int           `validate:"min=0,max=100"`
	MaxBrightness      int           `validate:"min=0,max=100,gtefield=MinBrightness"`
	BrightnessInterval time.Duration `validate:"gt=0"`

	FrameInterval time.Duration `validate:"gt=0"`
	HueInterval   time.Duration `validate:"gt=0"`
	HuePeriod     time.Duration `validate:"gt=0"`

	LangtonsAnt bool
	Width       int `validate:"gt=0"`
	Height      int `validate:"gt=0"`
}

type StatusConfig struct {
	// ListenAddr enables the status API when set.
	ListenAddr     string
	ReportInterval time.Duration `validate:"gt=0"`

	// History retention (0 = unlimited).
	HistorySize   int           `validate:"gte=0"`
	HistoryMaxAge time.Duration `validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Weather: WeatherConfig{
			Endpoint:       providers.DefaultOpenWeatherEndpoint,
			PollInterval:   weather.DefaultPollInterval,
			BackoffFloor:   weather.DefaultBackoffFloor,
			BackoffCap:     weather.DefaultBackoffCap,
			RequestTimeout: providers.DefaultRequestTimeout,
		},
		Display: DisplayConfig{
			TempUnit:           weather.Fahrenheit,
			TimeFormat:         24,
			TextCycleInterval:  10 * time.Second,
			AutoBrightness:     true,
			ManualBrightness:   50,
			MinBrightness:      20,
			MaxBrightness:      60,
			BrightnessInterval: 10 * time.Second,
			FrameInterval:      60 * time.Millisecond,
			HueInterval:        time.Second,
			HuePeriod:          60 * time.Second,
			LangtonsAnt:        true,
			Width:              64,
			Height:             32,
		},
		Status: StatusConfig{
			ReportInterval: 15 * time.Minute,
			HistorySize:    96, // 16h at the default poll interval
			HistoryMaxAge:  24 * time.Hour,
		},
	}
}

// DefaultWithEnv returns the built-in configuration with the environment
// overrides applied. It is the fallback when a config file fails validation.
func DefaultWithEnv() *AppConfig {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// Load reads the INI file at path from fs on top of the defaults, then
// applies environment overrides (a .env file in the working directory is
// loaded first).
//
// A missing file is not fatal: the defaults are returned together with an
// error wrapping ErrNoConfigFile. Keys that fail to parse keep their default.
func Load(fs afero.Fs, path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file loaded", "error", err)
	}

	cfg := Default()

	var missing error
	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		file, err := ini.Load(data)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.apply(file)
	case errors.Is(err, os.ErrNotExist):
		missing = fmt.Errorf("%w: %s", ErrNoConfigFile, path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, missing
}

// Validate checks value ranges.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *AppConfig) apply(file *ini.File) {
	w := section{file.Section("Weather")}
	w.str("api_key", &c.Weather.APIKey)
	w.str("zip_code", &c.Weather.ZipCode)
	w.str("endpoint", &c.Weather.Endpoint)
	w.duration("poll_interval_seconds", time.Second, &c.Weather.PollInterval)
	w.duration("backoff_floor_seconds", time.Second, &c.Weather.BackoffFloor)
	w.duration("backoff_cap_seconds", time.Second, &c.Weather.BackoffCap)
	w.duration("request_timeout_seconds", time.Second, &c.Weather.RequestTimeout)

	d := section{file.Section("Display")}
	d.unit("temp_unit", &c.Display.TempUnit)
	d.integer("time_format", &c.Display.TimeFormat)
	d.duration("text_cycle_interval", time.Second, &c.Display.TextCycleInterval)
	d.boolean("AUTO_BRIGHTNESS_ADJUST", &c.Display.AutoBrightness)
	d.integer("MANUAL_BRIGHTNESS", &c.Display.ManualBrightness)
	d.integer("MIN_BRIGHTNESS", &c.Display.MinBrightness)
	d.integer("MAX_BRIGHTNESS", &c.Display.MaxBrightness)
	d.duration("FRAME_INTERVAL_MS", time.Millisecond, &c.Display.FrameInterval)
	d.duration("BRIGHTNESS_UPDATE_SECONDS", time.Second, &c.Display.BrightnessInterval)
	d.duration("DYNAMIC_COLOR_INTERVAL_SECONDS", time.Second, &c.Display.HueInterval)
	d.duration("DYNAMIC_COLOR_PERIOD_SECONDS", time.Second, &c.Display.HuePeriod)
	d.boolean("LANGTONS_ANT_ENABLED", &c.Display.LangtonsAnt)
	d.integer("WIDTH", &c.Display.Width)
	d.integer("HEIGHT", &c.Display.Height)

	s := section{file.Section("Status")}
	s.str("listen_addr", &c.Status.ListenAddr)
	s.duration("report_interval_minutes", time.Minute, &c.Status.ReportInterval)
	s.integer("history_size", &c.Status.HistorySize)
	s.duration("history_max_age_hours", time.Hour, &c.Status.HistoryMaxAge)
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := os.Getenv("WEATHER_ZIP_CODE"); v != "" {
		c.Weather.ZipCode = v
	}
}

// RenderOptions maps the display settings onto the render loop.
func (c *AppConfig) RenderOptions() render.Options {
	d := c.Display
	return render.Options{
		Unit:               d.TempUnit,
		TimeFormat:         d.TimeFormat,
		TextCycleInterval:  d.TextCycleInterval,
		AutoBrightness:     d.AutoBrightness,
		ManualBrightness:   d.ManualBrightness,
		MinBrightness:      d.MinBrightness,
		MaxBrightness:      d.MaxBrightness,
		BrightnessInterval: d.BrightnessInterval,
		FrameInterval:      d.FrameInterval,
		HueInterval:        d.HueInterval,
		HuePeriod:          d.HuePeriod,
		LangtonsAnt:        d.LangtonsAnt,
	}
}

func (c *AppConfig) OpenWeather() providers.OpenWeatherConfig {
	return providers.OpenWeatherConfig{
		APIKey:   c.Weather.APIKey,
		ZipCode:  c.Weather.ZipCode,
		Endpoint: c.Weather.Endpoint,
		Unit:     c.Display.TempUnit,
		Timeout:  c.Weather.RequestTimeout,
	}
}

func (c *AppConfig) Fetcher() weather.FetcherConfig {
	return weather.FetcherConfig{
		PollInterval: c.Weather.PollInterval,
		BackoffFloor: c.Weather.BackoffFloor,
		BackoffCap:   c.Weather.BackoffCap,
	}
}

// section reads typed keys, leaving the destination untouched when a key
// is absent or malformed.
type section struct {
	*ini.Section
}

func (s section) str(name string, dst *string) {
	if s.HasKey(name) {
		*dst = strings.TrimSpace(s.Key(name).String())
	}
}

func (s section) integer(name string, dst *int) {
	if !s.HasKey(name) {
		return
	}
	v, err := s.Key(name).Int()
	if err != nil {
		s.invalid(name, err)
		return
	}
	*dst = v
}

func (s section) boolean(name string, dst *bool) {
	if !s.HasKey(name) {
		return
	}
	v, err := s.Key(name).Bool()
	if err != nil {
		s.invalid(name, err)
		return
	}
	*dst = v
}

func (s section) duration(name string, unit time.Duration, dst *time.Duration) {
	if !s.HasKey(name) {
		return
	}
	v, err := s.Key(name).Int64()
	if err != nil {
		s.invalid(name, err)
		return
	}
	*dst = time.Duration(v) * unit
}

// unit accepts any value starting with F or C.
func (s section) unit(name string, dst *weather.Unit) {
	if !s.HasKey(name) {
		return
	}
	v := strings.ToUpper(strings.TrimSpace(s.Key(name).String()))
	switch {
	case strings.HasPrefix(v, "F"):
		*dst = weather.Fahrenheit
	case strings.HasPrefix(v, "C"):
		*dst = weather.Celsius
	default:
		s.invalid(name, fmt.Errorf("unknown temperature unit %q", v))
	}
}

func (s section) invalid(name string, err error) {
	slog.Warn("config: invalid value, keeping default",
		"section", s.Name(),
		"key", name,
		"value", s.Key(name).String(),
		"error", err,
	)
}
