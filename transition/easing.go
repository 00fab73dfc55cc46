package transition

import "fmt"

// Easing maps linear progress in [0,1] to perceptual progress in [0,1].
// Implementations must be monotonic non-decreasing with f(0)=0 and f(1)=1.
type Easing func(t float32) float32

func Linear(t float32) float32 { return clamp01(t) }

// Smoothstep is the cubic Hermite ease 3t²-2t³.
func Smoothstep(t float32) float32 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}

// CubicInOut accelerates through the first half and decelerates through the second.
func CubicInOut(t float32) float32 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// QuadInOut matches the "power2.inOut" curve of the gallery animations.
func QuadInOut(t float32) float32 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

// EasingByName resolves a configured easing name.
func EasingByName(name string) (Easing, error) {
	switch name {
	case "", "smoothstep":
		return Smoothstep, nil
	case "linear":
		return Linear, nil
	case "cubic", "cubic-in-out":
		return CubicInOut, nil
	case "quad", "power2", "power2-in-out":
		return QuadInOut, nil
	default:
		return nil, fmt.Errorf("unknown easing %q", name)
	}
}

func clamp01(t float32) float32 {
	if t != t || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
