package renderer

import (
	"context"
	"image/color"
	stdmath "math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sky-archive/math"
	"sky-archive/photo"
	"sky-archive/sky"
	"sky-archive/timeline"
	"sky-archive/transition"
)

// recorder is a Target that keeps what it was asked to draw.
type recorder struct {
	w, h      int
	uniforms  []sky.Uniforms
	composite []photo.Composite
}

func (r *recorder) Size() (int, int) { return r.w, r.h }

func (r *recorder) DrawSky(_ context.Context, _ *sky.Model, u sky.Uniforms) error {
	r.uniforms = append(r.uniforms, u)
	return nil
}

func (r *recorder) DrawPhoto(_ context.Context, c photo.Composite) error {
	r.composite = append(r.composite, c)
	return nil
}

func newTestEngine(t *testing.T, start int) *Engine {
	t.Helper()
	opt := DefaultEngineOptions()
	opt.StartDay = start
	return NewEngine(NewProcedural(sky.DefaultSettings(), -1), opt, zaptest.NewLogger(t))
}

func TestEngine_SetDayTransitionsAndSettles(t *testing.T) {
	e := newTestEngine(t, 5)

	e.SetDay(5)
	assert.False(t, e.State().Active)

	e.SetDay(9)
	require.True(t, e.State().Active)
	var last float32
	for i := 0; i < 70; i++ {
		e.Tick(1.0/60, View{})
		f := e.Frame()
		if e.State().Active {
			assert.GreaterOrEqual(t, f.Weight, last)
			last = f.Weight
		}
	}
	want := transition.State{From: 9, To: 9}
	if diff := cmp.Diff(want, e.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	f := e.Frame()
	assert.Equal(t, 9, f.DayA)
	assert.Equal(t, 9, f.DayB)
	assert.Zero(t, f.Weight)
}

func TestEngine_RapidScrub(t *testing.T) {
	e := newTestEngine(t, 0)
	for _, d := range []int{12, 40, 41, 90, 200, 201, 202, 300, 310, 120} {
		e.SetDay(d)
		e.Tick(1.0/120, View{})
		assert.True(t, e.State().Active)
	}
	for i := 0; i < 200 && e.State().Active; i++ {
		e.Tick(1.0/60, View{})
	}
	assert.Equal(t, 120, e.Day())
	assert.False(t, e.State().Active)
}

func TestEngine_Navigation(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Prev()
	assert.Equal(t, timeline.TotalDays-1, e.Day())
	e.Next()
	assert.Equal(t, 0, e.Day())

	e.Scrub(0.5)
	assert.Equal(t, 182, e.Day())
	e.Scrub(7)
	assert.Equal(t, timeline.TotalDays-1, e.Day())

	e.SetDay(-40)
	assert.Equal(t, 0, e.Day())
	e.SetDay(9999)
	assert.Equal(t, timeline.TotalDays-1, e.Day())
}

func TestEngine_SetDayThen(t *testing.T) {
	e := newTestEngine(t, 0)
	var settled []int
	e.SetDayThen(30, func(d int) { settled = append(settled, d) })
	for i := 0; i < 120; i++ {
		e.Tick(1.0/60, View{})
	}
	assert.Equal(t, []int{30}, settled)
}

func TestEngine_Autoplay(t *testing.T) {
	e := newTestEngine(t, 362)
	for i := 0; i < 4; i++ {
		e.Tick(0.5, View{Autoplay: true})
	}
	assert.Equal(t, 363, e.Day())

	e.Tick(2, View{Autoplay: true})
	assert.Equal(t, 0, e.Day(), "autoplay wraps")

	// Switching autoplay off discards the partial interval.
	e.Tick(1.5, View{Autoplay: true})
	e.Tick(0.1, View{})
	e.Tick(1.0, View{Autoplay: true})
	assert.Equal(t, 0, e.Day())
}

func TestEngine_ClockAndDegenerateInput(t *testing.T) {
	e := newTestEngine(t, 0)
	e.Tick(1.5, View{})
	assert.InDelta(t, 1.5, e.Frame().Time, 1e-6)

	e.Tick(10, View{Paused: true})
	assert.InDelta(t, 1.5, e.Frame().Time, 1e-6)

	e.Tick(stdmath.NaN(), View{})
	e.Tick(-3, View{})
	assert.InDelta(t, 1.5, e.Frame().Time, 1e-6)
}

func TestEngine_PointerSmoothing(t *testing.T) {
	e := newTestEngine(t, 0)
	e.SetPointer(1, 1)
	assert.InDelta(t, 0.525, e.Pointer().X, 1e-6)
	assert.InDelta(t, 0.525, e.Pointer().Y, 1e-6)

	before := e.Pointer()
	e.SetPointer(float32(stdmath.NaN()), 0.2)
	assert.Equal(t, before, e.Pointer())

	for i := 0; i < 500; i++ {
		e.SetPointer(5, -5)
	}
	assert.InDelta(t, 1, e.Pointer().X, 1e-3)
	assert.InDelta(t, 0, e.Pointer().Y, 1e-3)
}

func TestEngine_IntensityBoostDecays(t *testing.T) {
	e := newTestEngine(t, 0)
	assert.Equal(t, float32(1), e.Intensity())

	e.PointerDown()
	assert.Equal(t, float32(2), e.Intensity())
	for i := 0; i < 10; i++ {
		e.Tick(1.0/60, View{})
	}
	assert.Equal(t, float32(2), e.Intensity(), "held pointer keeps the boost")

	e.PointerUp()
	e.Tick(1.0/60, View{})
	assert.InDelta(t, 1.99, e.Intensity(), 1e-6)
	for i := 0; i < 150; i++ {
		e.Tick(1.0/60, View{})
	}
	assert.Equal(t, float32(1), e.Intensity())

	e.SetInteractionIntensity(-1)
	assert.Equal(t, float32(1), e.Intensity())
	e.SetInteractionIntensity(1.5)
	assert.Equal(t, float32(1.5), e.Intensity())
}

func TestEngine_Labels(t *testing.T) {
	opt := DefaultEngineOptions()
	opt.Locale = timeline.LocaleCzech
	e := NewEngine(NewProcedural(sky.DefaultSettings(), -1), opt, nil)
	assert.Equal(t, timeline.Summer, e.SeasonLabel(100))
	assert.Equal(t, "DUB", e.CalendarLabel(100))
	assert.Equal(t, "PRO", e.CalendarLabel(5000))
}

func TestProcedural_UniformsFollowTransition(t *testing.T) {
	p := NewProcedural(sky.DefaultSettings(), 0.5)
	target := &recorder{w: 64, h: 32}
	f := Frame{Time: 3, DayA: 360, DayB: 4, Weight: 0.5, Pointer: math.Vec2{X: 0.5, Y: 0.5}, Intensity: 1}

	require.NoError(t, p.Render(context.Background(), target, f))
	require.Len(t, target.uniforms, 1)
	u := target.uniforms[0]
	assert.InDelta(t, 0, u.Day, 1e-4, "halfway between 360 and 4 is day 0")
	assert.Equal(t, float32(0.5), u.TimeOfDay)
	assert.Equal(t, math.Vec2{X: 64, Y: 32}, u.Resolution)
}

func TestEngine_RenderFrameOnCanvas(t *testing.T) {
	e := newTestEngine(t, 150)
	e.Tick(4, View{})
	c := NewCanvas(12, 8, 3)
	require.NoError(t, e.RenderFrame(context.Background(), c))

	img := c.Image()
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			px := img.RGBAAt(x, y)
			require.Equal(t, uint8(255), px.A)
			require.NotEqual(t, color.RGBA{A: 255}, px, "pixel %d,%d is black", x, y)
		}
	}
}

func TestParseKindAndNew(t *testing.T) {
	k, err := ParseKind("Photo")
	require.NoError(t, err)
	assert.Equal(t, KindPhoto, k)
	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindProcedural, k)

	_, err = ParseKind("vulkan")
	assert.ErrorIs(t, err, ErrUnknownBackend)
	_, err = New("vulkan", DefaultSettings(), nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	r, err := New(KindProcedural, DefaultSettings(), nil)
	require.NoError(t, err)
	assert.Equal(t, KindProcedural, r.Kind())
	assert.NoError(t, r.Close())

}
