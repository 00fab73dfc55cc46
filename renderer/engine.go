package renderer

import (
	"context"
	stdmath "math"
	"time"

	"go.uber.org/zap"

	"sky-archive/math"
	"sky-archive/timeline"
	"sky-archive/transition"
)

// EngineOptions tune the input boundary of the Engine.
type EngineOptions struct {
	Transition transition.Config
	Locale     timeline.Locale
	StartDay   int

	// IntensityBoost is applied on pointer-down and decays by
	// IntensityDecay every tick until it is back at 1.
	IntensityBoost float32
	IntensityDecay float32
	// PointerSmoothing is the share of the way the pointer moves towards
	// each new position.
	PointerSmoothing float32
	// AutoplayInterval is the time each day stays on screen during
	// autoplay.
	AutoplayInterval time.Duration
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Transition:       transition.DefaultConfig(),
		Locale:           timeline.LocaleEnglish,
		IntensityBoost:   2.0,
		IntensityDecay:   0.01,
		PointerSmoothing: 0.05,
		AutoplayInterval: 2 * time.Second,
	}
}

// View is the front-end state that affects the core. It is passed into
// every Tick instead of living in the Engine.
type View struct {
	Autoplay bool
	// Paused freezes the clock, so clouds and the sun stop moving.
	Paused bool
}

// Engine is the single entry point for a front-end: it sanitises input,
// runs the clock and the day transition, and renders frames with the
// selected SkyRenderer. It must be driven from one goroutine.
type Engine struct {
	r    SkyRenderer
	ctrl *transition.Controller
	opt  EngineOptions
	log  *zap.Logger

	clock     float64
	pointer   math.Vec2
	intensity float32
	held      bool
	autoplay  time.Duration
}

func NewEngine(r SkyRenderer, opt EngineOptions, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.PointerSmoothing <= 0 || opt.PointerSmoothing > 1 {
		opt.PointerSmoothing = 1
	}
	if opt.IntensityBoost < 1 {
		opt.IntensityBoost = 1
	}
	return &Engine{
		r:         r,
		ctrl:      transition.New(opt.StartDay, opt.Transition),
		opt:       opt,
		log:       log,
		pointer:   math.Vec2{X: 0.5, Y: 0.5},
		intensity: 1,
	}
}

func (e *Engine) Renderer() SkyRenderer { return e.r }

// State is the transition snapshot.
func (e *Engine) State() transition.State { return e.ctrl.State() }

// Day is the day the engine shows or is heading to.
func (e *Engine) Day() int { return e.ctrl.Target() }

// SetDay requests day; out-of-range values are clamped.
func (e *Engine) SetDay(day int) {
	if c := timeline.Clamp(day); c != day {
		e.log.Debug("day clamped", zap.Int("requested", day), zap.Int("day", c))
	}
	e.ctrl.RequestDay(day)
}

// SetDayThen is SetDay with a callback run once the engine settles there.
func (e *Engine) SetDayThen(day int, fn func(day int)) {
	e.ctrl.RequestDayThen(day, fn)
}

// Next and Prev step one day, wrapping around the cycle.
func (e *Engine) Next() { e.ctrl.RequestDay(timeline.Wrap(e.Day() + 1)) }
func (e *Engine) Prev() { e.ctrl.RequestDay(timeline.Wrap(e.Day() - 1)) }

// Scrub jumps the request to a fraction of the timeline.
func (e *Engine) Scrub(fraction float64) {
	e.ctrl.RequestDay(timeline.FromFraction(fraction))
}

// SetPointer moves the pointer towards (nx, ny), normalised with y up.
// Non-finite input is ignored.
func (e *Engine) SetPointer(nx, ny float32) {
	target := math.Vec2{X: nx, Y: ny}
	if !target.IsFinite() {
		e.log.Debug("pointer ignored", zap.Float32("x", nx), zap.Float32("y", ny))
		return
	}
	e.pointer = e.pointer.Lerp(target.Clamp01(), e.opt.PointerSmoothing)
}

// Pointer is the smoothed pointer position.
func (e *Engine) Pointer() math.Vec2 { return e.pointer }

// SetInteractionIntensity overrides the current intensity. It still decays
// back to 1 while the pointer is released.
func (e *Engine) SetInteractionIntensity(boost float32) {
	if !math.IsFinite(boost) || boost < 0 {
		e.log.Debug("intensity ignored", zap.Float32("boost", boost))
		return
	}
	e.intensity = boost
}

func (e *Engine) Intensity() float32 { return e.intensity }

// PointerDown boosts the interaction intensity and holds it while pressed.
func (e *Engine) PointerDown() {
	e.held = true
	e.intensity = e.opt.IntensityBoost
}

func (e *Engine) PointerUp() { e.held = false }

// Tick advances the engine by dt seconds. Degenerate dt values are treated
// as zero.
func (e *Engine) Tick(dt float64, v View) {
	if stdmath.IsNaN(dt) || dt < 0 || dt > 3600 {
		e.log.Debug("tick ignored", zap.Float64("dt", dt))
		dt = 0
	}
	if !v.Paused {
		e.clock += dt
	}

	if !e.held && e.intensity > 1 {
		e.intensity = max(e.intensity-e.opt.IntensityDecay, 1)
	}

	if v.Autoplay && e.opt.AutoplayInterval > 0 {
		e.autoplay += time.Duration(dt * float64(time.Second))
		for e.autoplay >= e.opt.AutoplayInterval {
			e.autoplay -= e.opt.AutoplayInterval
			e.Next()
		}
	} else {
		e.autoplay = 0
	}

	e.ctrl.Tick(float32(dt))
	e.r.Tick(e.Frame())
}

// Frame snapshots the state a renderer needs.
func (e *Engine) Frame() Frame {
	a, b, w := e.ctrl.Output()
	return Frame{
		Time:      float32(e.clock),
		DayA:      a,
		DayB:      b,
		Weight:    w,
		Pointer:   e.pointer,
		Intensity: e.intensity,
	}
}

// RenderFrame draws the current frame onto t.
func (e *Engine) RenderFrame(ctx context.Context, t Target) error {
	return e.r.Render(ctx, t, e.Frame())
}

// SeasonLabel and CalendarLabel describe a day; out-of-range days clamp.
func (e *Engine) SeasonLabel(day int) timeline.Season { return timeline.SeasonOf(day) }

func (e *Engine) CalendarLabel(day int) string {
	return timeline.CalendarLabelIn(e.opt.Locale, day)
}

// Close releases the renderer's resources.
func (e *Engine) Close() error { return e.r.Close() }
