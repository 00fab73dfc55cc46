package sky

import (
	stdmath "math"

	"sky-archive/math"
)

// Band is a time-of-day colour band.
type Band int

const (
	Dawn Band = iota
	Daytime
	Dusk
)

func (b Band) String() string {
	switch b {
	case Dawn:
		return "dawn"
	case Daytime:
		return "day"
	case Dusk:
		return "dusk"
	default:
		return "unknown"
	}
}

// BandOf classifies tod in [0,1).
func (th Thresholds) BandOf(tod float32) Band {
	switch {
	case tod < th.DawnEnd:
		return Dawn
	case tod < th.DayEnd:
		return Daytime
	default:
		return Dusk
	}
}

// IsNight reports whether stars are visible at tod.
func (th Thresholds) IsNight(tod float32) bool {
	return tod < th.NightBefore || tod > th.NightAfter
}

var (
	nightSky    = math.Vec3{X: 0.05, Y: 0.05, Z: 0.1}
	summerSky   = math.Vec3{X: 0.5, Y: 0.7, Z: 1.0}
	winterSky   = math.Vec3{X: 0.6, Y: 0.8, Z: 0.9}
	summerDusk  = math.Vec3{X: 0.8, Y: 0.3, Z: 0.1}
	winterDusk  = math.Vec3{X: 0.6, Y: 0.2, Z: 0.1}
	zenithShift = math.Vec3{X: 0.2, Y: 0.1, Z: 0.2}
)

// daySky is the clear-day colour along rd, bluer towards the horizon in
// summer and paler in winter.
func daySky(rd math.Vec3, seasonBlend float32) math.Vec3 {
	base := summerSky.Lerp(winterSky, seasonBlend)
	return base.Sub(zenithShift.Mul(rd.Y)).Add(math.Splat3(0.075))
}

// Background is the sky colour behind the clouds along rd. Dawn rises from
// night to the day colour, dusk passes through the seasonal sunset and
// back into night so the cycle wraps without a seam.
func Background(rd math.Vec3, u Uniforms) math.Vec3 {
	th := u.Settings.Thresholds
	tod := u.TimeOfDay
	day := daySky(rd, u.SeasonBlend)

	switch th.BandOf(tod) {
	case Dawn:
		return nightSky.Lerp(day, math.Smoothstep(0, 1, tod/th.DawnEnd))
	case Daytime:
		return day
	default:
		sunset := summerDusk.Lerp(winterDusk, u.SeasonBlend)
		s := (tod - th.DayEnd) / (1 - th.DayEnd)
		if s < 0.5 {
			return day.Lerp(sunset, s*2)
		}
		return sunset.Lerp(nightSky, s*2-1)
	}
}

// starHash runs in double precision: in float32 the product keeps only a
// few fractional bits and the star field collapses onto a handful of levels.
func starHash(p math.Vec3) float32 {
	d := float64(p.X)*13.5345 + float64(p.Y)*41.2345 + float64(p.Z)*73.2345
	h := stdmath.Sin(d) * 29342.2346
	return float32(h - stdmath.Floor(h))
}

// Stars adds a sparse twinkling star field on upward rays at night. It
// fades in with the night band and towards the zenith.
func Stars(rd math.Vec3, u Uniforms) math.Vec3 {
	th := u.Settings.Thresholds
	if !th.IsNight(u.TimeOfDay) || rd.Y <= 0 {
		return math.Vec3Zero
	}
	seed := starHash(rd.Mul(500).Floor())
	threshold := u.Settings.StarThreshold
	if seed <= threshold {
		return math.Vec3Zero
	}
	intensity := math.Smoothstep(threshold, 0.999, seed)
	twinkle := math.Sin(u.Time*seed*5+seed*20)*0.5 + 0.5
	fade := 1 - math.Smoothstep(th.NightBefore, 0.5, u.TimeOfDay)*math.Smoothstep(th.NightAfter, 0.5, u.TimeOfDay)
	horizon := math.Smoothstep(0, 0.2, rd.Y)
	return math.Splat3(intensity * twinkle * fade * horizon)
}

// sunVisibility fades the sun out as it sinks below the horizon.
func sunVisibility(sun math.Vec3) float32 {
	return math.Smoothstep(-0.1, 0.05, sun.Y)
}

var (
	sunHalo  = math.Vec3{X: 1.0, Y: 0.7, Z: 0.4}
	sunDisc  = math.Vec3{X: 1.0, Y: 0.8, Z: 0.6}
	sunWide  = math.Vec3{X: 1.0, Y: 0.5, Z: 0.3}
	sunFlare = math.Vec3{X: 1.0, Y: 0.4, Z: 0.2}
)

// SunGlow is the halo, disc and wide glow around the sun. The disc is
// sharpest at noon and spreads out towards the ends of the day.
func SunGlow(rd math.Vec3, u Uniforms) math.Vec3 {
	sun := math.Saturate(u.SunDir.Dot(rd))
	noon := u.TimeOfDay*2 - 1
	mask := math.Pow(sun, 300/(1.01-noon*noon))

	col := sunHalo.Mul(0.25 * math.Pow(sun, 5)).
		Add(sunDisc.Mul(0.8 * mask)).
		Add(sunWide.Mul(0.5 * sun * sun))
	return col.Mul(sunVisibility(u.SunDir))
}

// sunFlareTerm is added after compositing so it also tints cloud edges.
func sunFlareTerm(rd math.Vec3, u Uniforms) math.Vec3 {
	sun := math.Saturate(u.SunDir.Dot(rd))
	return sunFlare.Mul(0.2 * sun * sun * sun * sunVisibility(u.SunDir))
}

var (
	dawnLightStart = math.Vec3{X: 1.0, Y: 0.6, Z: 0.3}
	dawnLightEnd   = math.Vec3{X: 1.0, Y: 0.8, Z: 0.4}
	dayLight       = math.Vec3{X: 1.0, Y: 0.95, Z: 0.8}
	duskLightStart = math.Vec3{X: 1.0, Y: 0.4, Z: 0.2}
	duskLightEnd   = math.Vec3{X: 0.8, Y: 0.3, Z: 0.2}
)

// Sunlight is the colour of direct light reaching the clouds, dimmed to a
// faint fill while the sun is down.
func Sunlight(u Uniforms) math.Vec3 {
	th := u.Settings.Thresholds
	tod := u.TimeOfDay
	var light math.Vec3
	switch th.BandOf(tod) {
	case Dawn:
		light = dawnLightStart.Lerp(dawnLightEnd, tod/th.DawnEnd)
	case Daytime:
		light = dayLight
	default:
		light = duskLightStart.Lerp(duskLightEnd, (tod-th.DayEnd)/(1-th.DayEnd))
	}
	return light.Mul(math.Mix(0.2, 1, sunVisibility(u.SunDir)))
}
