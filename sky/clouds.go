package sky

import (
	"sky-archive/math"
)

var windDir = math.Vec3{X: 0, Y: 0.1, Z: 1}

// densityAt is the signed cloud density at p: positive inside a cloud.
// The field drifts with time, leans towards the pointer while the user
// interacts, and is reshaped by the season: winter clouds sit lower and
// are more sharply defined.
func (m *Model) densityAt(p math.Vec3, octaves int, u Uniforms) float32 {
	q := p.Sub(windDir.Mul(u.Time * 0.1))
	q.X += (u.Pointer.X - 0.5) * u.Intensity * 0.3
	q.Y += (u.Pointer.Y - 0.5) * u.Intensity * 0.3

	phase := u.SeasonFactor * 2 * math.Pi
	q.X += math.Sin(phase) * 2
	q.Z += math.Cos(phase) * 2

	f := m.noise.FBM(q.Mul(0.3), 3)*0.5 + 0.5
	if octaves >= 2 {
		f += m.noise.FBM(q.Mul(0.7), min(octaves, 5)) * 0.25
	}

	heightOffset := math.Mix(-0.4, -0.8, u.SeasonBlend)
	shape := math.Mix(1, 1.5, u.SeasonBlend)
	f = math.Pow(math.Saturate(f), shape)

	return 1.5*f - 0.5 - p.Y + heightOffset
}

// Density exposes the cloud field at full detail.
func (m *Model) Density(p math.Vec3, u Uniforms) float32 {
	return m.densityAt(p, 5, u)
}

// Phase is the Henyey-Greenstein phase function for asymmetry g.
func Phase(g, cosTheta float32) float32 {
	g2 := g * g
	denom := math.Pow(1+g2-2*g*cosTheta, 1.5)
	if denom <= 0 {
		return 0
	}
	return (1 - g2) / denom / (4 * math.Pi)
}

// interleavedGradient is a per-pixel dither in [0,1).
func interleavedGradient(frag math.Vec2) float32 {
	return math.Fract(52.9829189 * math.Fract(0.06711056*frag.X+0.00583715*frag.Y))
}

// slabInterval clips the ray to the cloud slab. ok is false when the ray
// never enters it.
func (s Settings) slabInterval(ro, rd math.Vec3) (tmin, tmax float32, ok bool) {
	yb, yt := s.SlabBottom, s.SlabTop
	switch {
	case ro.Y > yt:
		if rd.Y >= 0 {
			return 0, 0, false
		}
		tmin = (yt - ro.Y) / rd.Y
		tmax = min((yb-ro.Y)/rd.Y, tmin+s.FarClip)
	case ro.Y < yb:
		if rd.Y <= 0 {
			return 0, 0, false
		}
		tmin = (yb - ro.Y) / rd.Y
		tmax = min((yt-ro.Y)/rd.Y, tmin+s.FarClip)
	default:
		tmax = s.FarClip
		if rd.Y > 0 {
			tmax = min(tmax, (yt-ro.Y)/rd.Y)
		} else if rd.Y < 0 {
			tmax = min(tmax, (yb-ro.Y)/rd.Y)
		}
	}
	return tmin, tmax, true
}

var (
	cloudLit    = math.Vec3{X: 1.0, Y: 0.95, Z: 0.8}
	cloudDense  = math.Vec3{X: 0.25, Y: 0.3, Z: 0.35}
	ambientSky  = math.Vec3{X: 0.65, Y: 0.65, Z: 0.75}
	densityStep = float32(0.01)
)

// Raymarch accumulates premultiplied cloud colour and coverage along the
// ray. bg is the sky behind the clouds and is used for distance fog. The
// result has every component in [0,1]; alpha is 0 when the ray misses the
// slab or only sees thin air.
func (m *Model) Raymarch(ro, rd, bg math.Vec3, frag math.Vec2, u Uniforms) math.Vec4 {
	s := u.Settings
	tmin, tmax, ok := s.slabInterval(ro, rd)
	if !ok {
		return math.Vec4{}
	}

	light := Sunlight(u)
	phase := Phase(s.PhaseG, u.SunDir.Dot(rd))

	var sum math.Vec4
	t := tmin + 0.1*interleavedGradient(frag)
	for i := 0; i < s.MaxSteps; i++ {
		dt := max(0.05, 0.02*t)
		octaves := max(5-int(math.Log2(1+t*0.5)), 1)
		pos := ro.Add(rd.Mul(t))

		if den := m.densityAt(pos, octaves, u); den > densityStep {
			shadow := m.densityAt(pos.Add(u.SunDir.Mul(0.3)), octaves, u)
			dif := math.Saturate((den - shadow) / 0.25)

			lin := ambientSky.Mul(1.1).Add(light.Mul(0.8 * dif * phase * 2))
			col := cloudLit.Lerp(cloudDense, math.Saturate(den)).MulVec(lin)
			col = col.Lerp(bg, 1-math.Exp2(-0.1*t))

			a := min(den*8*dt, 1)
			sum = sum.Add(col.Mul(a).ToVec4(a).Mul(1 - sum.W))
		}

		t += dt
		if t > tmax || sum.W > 0.99 {
			break
		}
	}
	return sum.Clamp01()
}
