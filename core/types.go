package core

import (
	"image/color"

	"sky-archive/math"
)

// Color is a linear floating-point RGBA colour. Components may exceed 1
// before tone mapping.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// RGB builds an opaque colour.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// FromVec3 builds an opaque colour from a shader-style vec3.
func FromVec3(v math.Vec3) Color {
	return Color{R: v.X, G: v.Y, B: v.Z, A: 1}
}

func (c Color) Vec3() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Lerp linearly interpolates every channel, alpha included.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Scale multiplies the colour channels, leaving alpha alone.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

func (c Color) Clamp() Color {
	return Color{
		R: math.Saturate(c.R),
		G: math.Saturate(c.G),
		B: math.Saturate(c.B),
		A: math.Saturate(c.A),
	}
}

func (c Color) IsFinite() bool {
	return math.IsFinite(c.R) && math.IsFinite(c.G) && math.IsFinite(c.B) && math.IsFinite(c.A)
}

// ToRGBA8 clamps and quantises to an 8-bit straight-alpha colour.
func (c Color) ToRGBA8() color.RGBA {
	q := func(v float32) uint8 {
		return uint8(math.Saturate(v)*255 + 0.5)
	}
	return color.RGBA{R: q(c.R), G: q(c.G), B: q(c.B), A: q(c.A)}
}

// ColorFromRGBA8 converts an 8-bit colour to linear floats in [0,1].
func ColorFromRGBA8(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// Vertex is one mesh vertex as uploaded or exported.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}
