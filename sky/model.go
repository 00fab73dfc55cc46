package sky

import (
	"sky-archive/core"
	"sky-archive/math"
)

// Model owns the sky settings and the noise texture they seed.
type Model struct {
	settings Settings
	noise    *NoiseTexture
}

func NewModel(s Settings) *Model {
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultSettings().MaxSteps
	}
	return &Model{settings: s, noise: NewNoiseTexture(s.Seed)}
}

func (m *Model) Settings() Settings         { return m.settings }
func (m *Model) Noise() *NoiseTexture       { return m.noise }
func (m *Model) Uniforms(p Params) Uniforms { return NewUniforms(p, m.settings) }

// SkyColor is the cloudless sky along rd: background, stars and sun.
func SkyColor(rd math.Vec3, u Uniforms) math.Vec3 {
	return Background(rd, u).Add(Stars(rd, u)).Add(SunGlow(rd, u))
}

// Shade evaluates one pixel. fragCoord is in pixels with the origin at the
// bottom-left. The result is tonemapped and always finite; if the cloud
// pass degenerates the pixel falls back to the plain sky.
func (m *Model) Shade(fragCoord math.Vec2, u Uniforms) core.Color {
	ro, rd := u.Ray(fragCoord)
	if !rd.IsFinite() {
		return fallback(u)
	}

	bg := SkyColor(rd, u)
	if !bg.IsFinite() {
		bg = nightSky
	}

	clouds := m.Raymarch(ro, rd, bg, fragCoord, u)
	col := bg.Mul(1 - clouds.W).Add(clouds.ToVec3())
	col = col.Add(sunFlareTerm(rd, u))
	col = saturate3(col)

	n := grainHash(fragCoord.Add(math.Vec2{X: math.Fract(u.Time), Y: math.Fract(u.Time * 1.3)}))
	col = col.Lerp(col.Mul(0.9+0.1*n), u.Settings.GrainAmount)

	col = Tonemap(col)
	if !col.IsFinite() {
		return core.FromVec3(saturate3(Tonemap(bg)))
	}
	return core.FromVec3(col)
}

func fallback(u Uniforms) core.Color {
	return core.FromVec3(Tonemap(Background(math.Vec3Up, u)))
}

func grainHash(p math.Vec2) float32 {
	return math.Fract(math.Sin(p.Dot(math.Vec2{X: 12.9898, Y: 78.233})) * 43758.5453)
}

func saturate3(v math.Vec3) math.Vec3 {
	return math.Vec3{X: math.Saturate(v.X), Y: math.Saturate(v.Y), Z: math.Saturate(v.Z)}
}

// Tonemap is a soft Reinhard curve applied in a 0.8-gamma space. It is
// monotonic per channel and never reaches 1.
func Tonemap(c math.Vec3) math.Vec3 {
	tm := func(x float32) float32 {
		x = math.Pow(max(x, 0), 0.8)
		x = x / (1 + x)
		return math.Pow(x, 1/0.8)
	}
	return math.Vec3{X: tm(c.X), Y: tm(c.Y), Z: tm(c.Z)}
}
