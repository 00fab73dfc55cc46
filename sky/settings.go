// Package sky evaluates the procedural sky: a ray-marched cloud slab lit by
// a sun that follows the time of day and the season. Everything here is a
// pure function of its inputs and runs identically on every pixel; the
// OpenGL back-end carries a GLSL port of the same model.
package sky

import (
	"sky-archive/math"
	"sky-archive/timeline"
)

// Thresholds split the time-of-day cycle into colour bands.
type Thresholds struct {
	DawnEnd     float32 // dawn is [0, DawnEnd)
	DayEnd      float32 // day is [DawnEnd, DayEnd), dusk is [DayEnd, 1)
	NightBefore float32 // stars appear below this
	NightAfter  float32 // and above this
}

// Settings are the tunable constants of the sky model.
type Settings struct {
	DayCycleRate  float32 // time-of-day cycles per second
	Thresholds    Thresholds
	MaxSteps      int
	PhaseG        float32 // Henyey-Greenstein asymmetry, negative favours back-scattering
	SlabBottom    float32
	SlabTop       float32
	FarClip       float32
	StarThreshold float32
	GrainAmount   float32
	Seed          uint64
}

func DefaultSettings() Settings {
	return Settings{
		DayCycleRate: 0.05,
		Thresholds: Thresholds{
			DawnEnd:     0.25,
			DayEnd:      0.75,
			NightBefore: 0.2,
			NightAfter:  0.8,
		},
		MaxSteps:      100,
		PhaseG:        -0.3,
		SlabBottom:    -3.0,
		SlabTop:       0.6,
		FarClip:       60,
		StarThreshold: 0.995,
		GrainAmount:   0.03,
		Seed:          364,
	}
}

// Params is the per-frame input to the sky.
type Params struct {
	Time       float32   // seconds since the renderer started
	Day        float32   // day index, fractional while a transition runs
	Resolution math.Vec2 // pixels
	Pointer    math.Vec2 // normalised [0,1]², y up
	Intensity  float32   // interaction boost, 1 at rest
}

// Sanitize replaces degenerate values so they never reach the shading math.
func (p Params) Sanitize() Params {
	if !math.IsFinite(p.Time) {
		p.Time = 0
	}
	if !math.IsFinite(p.Day) {
		p.Day = 0
	}
	p.Day = math.Mod(p.Day, timeline.TotalDays)
	if !p.Resolution.IsFinite() || p.Resolution.X < 1 || p.Resolution.Y < 1 {
		p.Resolution = math.Vec2{X: 1, Y: 1}
	}
	if !p.Pointer.IsFinite() {
		p.Pointer = math.Vec2{X: 0.5, Y: 0.5}
	}
	p.Pointer = p.Pointer.Clamp01()
	if !math.IsFinite(p.Intensity) || p.Intensity < 0 {
		p.Intensity = 1
	}
	return p
}

// Camera is the per-frame viewpoint.
type Camera struct {
	Origin math.Vec3
	Basis  math.Mat3
}

// Uniforms are everything derived once per frame. They map one to one onto
// the uniforms of the GPU sky pass.
type Uniforms struct {
	Params
	Settings Settings

	TimeOfDay    float32
	SeasonFactor float32
	SeasonBlend  float32
	SunDir       math.Vec3
	Camera       Camera
}

// NewUniforms derives the frame uniforms from sanitised params.
func NewUniforms(p Params, s Settings) Uniforms {
	p = p.Sanitize()
	u := Uniforms{
		Params:       p,
		Settings:     s,
		SeasonFactor: p.Day / timeline.TotalDays,
	}
	u.SeasonBlend = timeline.SeasonBlend(u.SeasonFactor)
	u.Camera = orbitCamera(p.Pointer, p.Time)
	return u.WithTimeOfDay(TimeOfDay(p.Time, s.DayCycleRate))
}

// WithTimeOfDay pins the time of day and recomputes the sun.
func (u Uniforms) WithTimeOfDay(tod float32) Uniforms {
	if !math.IsFinite(tod) {
		tod = 0
	}
	u.TimeOfDay = math.Fract(tod)
	u.SunDir = SunDirection(u.SeasonFactor, u.TimeOfDay)
	return u
}

// TimeOfDay is the fractional part of elapsed·rate.
func TimeOfDay(elapsed, rate float32) float32 {
	return math.Fract(elapsed * rate)
}

// SunDirection places the sun for a season factor and time of day. The
// azimuth follows the year and the elevation follows a daily sine that peaks
// at noon (0.5) and crosses the horizon at 0.25 and 0.75; its amplitude
// varies with the season.
func SunDirection(season, tod float32) math.Vec3 {
	year := season * 2 * math.Pi
	phase := (tod - 0.25) * 2 * math.Pi
	height := math.Sin(phase) * (0.4 + 0.2*math.Sin(year))
	x := math.Cos(phase)
	z := -math.Sin(phase+math.Pi/2) * math.Cos(year*0.5)
	dir := math.Vec3{X: x, Y: height, Z: z}
	if dir.LengthSqr() < 1e-12 {
		return math.Vec3Up
	}
	return dir.Normalize()
}

// orbitCamera circles the cloud field; the pointer steers angle and height.
func orbitCamera(pointer math.Vec2, elapsed float32) Camera {
	angle := 3*pointer.X + elapsed*0.05
	height := 0.4 * pointer.Y
	origin := math.Vec3{X: math.Sin(angle), Y: height, Z: math.Cos(angle)}.Normalize().Mul(4).
		Sub(math.Vec3{Y: 0.1})
	target := math.Vec3{Y: -1}
	return Camera{
		Origin: origin,
		Basis:  math.Mat3LookAt(origin, target, 0.07*math.Cos(0.25*elapsed)),
	}
}

// Ray returns the view ray through pixel fragCoord (origin bottom-left).
func (u Uniforms) Ray(fragCoord math.Vec2) (ro, rd math.Vec3) {
	res := u.Resolution
	px := (2*fragCoord.X - res.X) / res.Y
	py := (2*fragCoord.Y - res.Y) / res.Y
	rd = u.Camera.Basis.MulVec3(math.Vec3{X: px, Y: py, Z: 1.5}.Normalize())
	return u.Camera.Origin, rd
}
