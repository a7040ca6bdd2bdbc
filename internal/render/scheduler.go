package render

import (
	"context"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-clock/internal/weather"
)

// MinFrameInterval keeps the render loop from spinning.
const MinFrameInterval = 20 * time.Millisecond

// Layout of the 64x32 panel. Text positions are baselines.
const (
	CharWidth  = 6 // estimated advance of the panel font
	TextMargin = 2

	clockRow     = 8
	readingRow   = 16
	conditionRow = 24

	dayX      = 2
	timeX     = 34
	tempX     = 2
	feelsX    = 33
	humidityX = 49
	iconX     = 50
	iconY     = 12
)

// Options configures the render loop.
type Options struct {
	Unit              weather.Unit
	TimeFormat        int // 12 or 24
	TextCycleInterval time.Duration

	AutoBrightness     bool
	ManualBrightness   int
	MinBrightness      int
	MaxBrightness      int
	BrightnessInterval time.Duration

	FrameInterval time.Duration
	HueInterval   time.Duration
	HuePeriod     time.Duration

	LangtonsAnt bool
	Location    *time.Location
}

// SnapshotReader is the read side of the shared weather state.
type SnapshotReader interface {
	Read() weather.Snapshot
}

// every fires at most once per interval. It fires on first use.
type every struct {
	interval time.Duration
	last     time.Time
	fired    bool
}

func (e *every) due(now time.Time) bool {
	if e.fired && now.Sub(e.last) < e.interval {
		return false
	}
	e.last, e.fired = now, true
	return true
}

// Scheduler renders frames onto a Canvas. Each frame reads the weather state
// once and evaluates the brightness, hue and text-cycle sub-schedules
// against their own last-fired times. It never blocks on I/O.
type Scheduler struct {
	opts   Options
	canvas Canvas
	state  SnapshotReader
	clock  clockwork.Clock
	ant    *Ant

	started    bool
	brightness every
	hueTick    every
	hue        color.RGBA

	showPrimary bool
	lastToggle  time.Time
	scrollX     int
	level       int
}

// NewScheduler creates a Scheduler. A nil clock means the real clock.
func NewScheduler(canvas Canvas, state SnapshotReader, opts Options, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.FrameInterval < MinFrameInterval {
		opts.FrameInterval = MinFrameInterval
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	s := &Scheduler{
		opts:        opts,
		canvas:      canvas,
		state:       state,
		clock:       clock,
		brightness:  every{interval: opts.BrightnessInterval},
		hueTick:     every{interval: opts.HueInterval},
		showPrimary: true,
		scrollX:     canvas.Width(),
	}
	if opts.LangtonsAnt {
		s.ant = NewAnt(canvas.Width()-1, canvas.Height()-1)
	}
	return s
}

// Run renders frames until ctx is cancelled, pacing them at the frame
// interval.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("render: starting",
		"frame_interval", s.opts.FrameInterval,
		"auto_brightness", s.opts.AutoBrightness,
		"langtons_ant", s.ant != nil,
	)
	for {
		if ctx.Err() != nil {
			slog.Info("render: stopped")
			return nil
		}

		start := s.clock.Now()
		s.Frame()

		wait := s.opts.FrameInterval - s.clock.Since(start)
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			slog.Info("render: stopped")
			return nil
		case <-s.clock.After(wait):
		}
	}
}

// Frame draws and presents a single frame.
func (s *Scheduler) Frame() {
	now := s.clock.Now()
	if !s.started {
		s.started = true
		s.lastToggle = now
		s.setBrightness(s.opts.ManualBrightness)
	}

	snap := s.state.Read()

	if s.opts.AutoBrightness && s.brightness.due(now) {
		level := s.opts.MaxBrightness
		if snap.IsDark(now) {
			level = s.opts.MinBrightness
		}
		s.setBrightness(level)
	}

	if s.hueTick.due(now) {
		s.hue = HueColor(now, s.opts.HuePeriod)
	}

	s.canvas.Clear()

	if s.ant != nil {
		x, y, c := s.ant.Step()
		s.canvas.SetPixel(x, y, c)
	}

	local := now.In(s.opts.Location)
	s.canvas.DrawText(dayX, clockRow, s.hue, local.Format("Mon"))
	s.canvas.DrawText(timeX, clockRow, s.hue, clockText(local, s.opts.TimeFormat))

	s.canvas.DrawText(tempX, readingRow, TemperatureColor(snap.Temperature), strconv.Itoa(snap.Temperature)+string(s.unit()))
	s.canvas.DrawText(feelsX, readingRow, TemperatureColor(snap.FeelsLike), strconv.Itoa(snap.FeelsLike)+"|")
	s.canvas.DrawText(humidityX, readingRow, HumidityColor(snap.Humidity), strconv.Itoa(snap.Humidity)+"%")

	s.drawConditionText(snap)

	DrawIcon(s.canvas, snap.Condition, iconX, iconY)

	s.canvas.SwapBuffers()

	if now.Sub(s.lastToggle) >= s.opts.TextCycleInterval {
		s.showPrimary = !s.showPrimary
		s.lastToggle = now
		s.scrollX = s.canvas.Width()
	}
}

// drawConditionText draws the condition label or the description, scrolling
// it right to left when it is wider than the panel.
func (s *Scheduler) drawConditionText(snap weather.Snapshot) {
	text := snap.Condition
	if !s.showPrimary {
		text = snap.Description
	}

	width := TextWidth(text)
	if width <= s.canvas.Width() {
		s.canvas.DrawText(TextMargin, conditionRow, White, text)
		s.scrollX = s.canvas.Width()
		return
	}

	s.canvas.DrawText(s.scrollX, conditionRow, White, text)
	if s.scrollX+width < 0 {
		s.scrollX = s.canvas.Width()
	} else {
		s.scrollX--
	}
}

func (s *Scheduler) setBrightness(level int) {
	if level != s.level {
		slog.Debug("render: brightness changed", "from", s.level, "to", level)
	}
	s.level = level
	s.canvas.SetBrightness(level)
}

func (s *Scheduler) unit() weather.Unit {
	if s.opts.Unit == "" {
		return weather.Fahrenheit
	}
	return s.opts.Unit
}

// ShowingPrimary reports whether the condition label (rather than the
// description) is selected.
func (s *Scheduler) ShowingPrimary() bool { return s.showPrimary }

// ScrollX returns the scroll cursor.
func (s *Scheduler) ScrollX() int { return s.scrollX }

// Brightness returns the last brightness applied to the canvas.
func (s *Scheduler) Brightness() int { return s.level }

// TextWidth estimates the rendered width of text in pixels.
func TextWidth(text string) int {
	return len([]rune(text)) * CharWidth
}

// clockText formats the time of day, blanking a leading zero.
func clockText(t time.Time, format int) string {
	layout := "15:04"
	if format == 12 {
		layout = "03:04"
	}
	out := t.Format(layout)
	if out[0] == '0' {
		out = " " + out[1:]
	}
	return out
}
