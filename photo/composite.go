package photo

import (
	"sky-archive/core"
	"sky-archive/math"
	"sky-archive/scene"
)

// Grading is the optional look applied on top of the cross-fade.
type Grading struct {
	// ColorShift is the amplitude of the per-day RGB drift; 0 disables it.
	ColorShift float32
	Vignette   bool
}

func DefaultGrading() Grading {
	return Grading{ColorShift: 0.1, Vignette: true}
}

// Composite blends the current frame into the next one. A nil frame reads
// as black.
type Composite struct {
	Current *scene.Texture
	Next    *scene.Texture
	// Weight is the eased transition progress in [0,1].
	Weight float32
	// DayFactor is day/totalDays of the displayed day, for grading.
	DayFactor float32
	Grading   Grading
}

// Shade returns the composited colour at uv (origin top-left).
func (c Composite) Shade(uv math.Vec2) core.Color {
	w := math.Saturate(c.Weight)
	if !math.IsFinite(c.Weight) {
		w = 0
	}

	col := c.Current.SampleBilinear(uv)
	if w > 0 {
		col = col.Lerp(c.Next.SampleBilinear(uv), w)
	}
	rgb := col.Vec3()

	if s := c.Grading.ColorShift; s != 0 {
		phase := c.DayFactor * 2 * math.Pi
		rgb = rgb.Add(math.Vec3{
			X: math.Sin(phase),
			Y: math.Sin(phase + 2),
			Z: math.Sin(phase + 4),
		}.Mul(s))
	}
	if c.Grading.Vignette {
		rgb = rgb.Mul(Vignette(uv))
	}

	out := core.FromVec3(rgb).Clamp()
	if !out.IsFinite() {
		return core.ColorBlack
	}
	return out
}

// Vignette darkens towards the corners: 1 in the middle, 0 beyond a radius
// of 2/3 from the centre.
func Vignette(uv math.Vec2) float32 {
	d := uv.Sub(math.Vec2{X: 0.5, Y: 0.5}).Length() * 1.5
	return 1 - math.Smoothstep(0.5, 1.0, d)
}
