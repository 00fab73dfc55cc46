package math

import "math"

// Scalar helpers mirroring the GLSL built-ins used by the sky shaders, so the
// CPU path and the GPU path read the same.

const Pi = float32(math.Pi)

func Sin(x float32) float32  { return float32(math.Sin(float64(x))) }
func Cos(x float32) float32  { return float32(math.Cos(float64(x))) }
func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }
func Exp2(x float32) float32 { return float32(math.Exp2(float64(x))) }
func Log2(x float32) float32 { return float32(math.Log2(float64(x))) }
func Abs(x float32) float32  { return float32(math.Abs(float64(x))) }

func Floor(x float32) float32 { return float32(math.Floor(float64(x))) }

func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// Fract returns x - floor(x); the result is always in [0,1).
func Fract(x float32) float32 {
	f := x - Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// Mod is GLSL mod(): the result has the sign of y.
func Mod(x, y float32) float32 {
	return x - y*Floor(x/y)
}

func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Saturate(x float32) float32 {
	return Clamp(x, 0, 1)
}

// Mix is GLSL mix(): a*(1-t) + b*t.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep is GLSL smoothstep(); edge0 may exceed edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func IsFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
