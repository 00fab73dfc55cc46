package renderer

import (
	"context"

	"sky-archive/math"
	"sky-archive/sky"
	"sky-archive/timeline"
)

// Procedural renders the ray-marched cloud sky.
type Procedural struct {
	model *sky.Model
	fixed float32
}

// NewProcedural builds the procedural renderer. A fixedTimeOfDay in [0,1)
// pins the sun; any other value lets the time of day run with the clock.
func NewProcedural(s sky.Settings, fixedTimeOfDay float32) *Procedural {
	return &Procedural{model: sky.NewModel(s), fixed: fixedTimeOfDay}
}

func (p *Procedural) Kind() Kind        { return KindProcedural }
func (p *Procedural) Model() *sky.Model { return p.model }
func (p *Procedural) Tick(Frame)        {}
func (p *Procedural) Close() error      { return nil }

// Uniforms derives the sky uniforms for f at the given resolution. While a
// transition runs the day blends along the shorter arc of the cycle.
func (p *Procedural) Uniforms(f Frame, width, height int) sky.Uniforms {
	u := p.model.Uniforms(sky.Params{
		Time:       f.Time,
		Day:        timeline.LerpDay(f.DayA, f.DayB, f.Weight),
		Resolution: math.Vec2{X: float32(width), Y: float32(height)},
		Pointer:    f.Pointer,
		Intensity:  f.Intensity,
	})
	if p.fixed >= 0 && p.fixed < 1 {
		u = u.WithTimeOfDay(p.fixed)
	}
	return u
}

func (p *Procedural) Render(ctx context.Context, t Target, f Frame) error {
	w, h := t.Size()
	return t.DrawSky(ctx, p.model, p.Uniforms(f, w, h))
}
