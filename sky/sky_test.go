package sky

import (
	stdmath "math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky-archive/math"
)

func testUniforms(day, tod float32) Uniforms {
	p := Params{Day: day, Resolution: math.Vec2{X: 32, Y: 32}, Pointer: math.Vec2{X: 0.5, Y: 0.5}, Intensity: 1}
	return NewUniforms(p, DefaultSettings()).WithTimeOfDay(tod)
}

func hue(v math.Vec3) float64 {
	h, _, _ := colorful.Color{R: float64(v.X), G: float64(v.Y), B: float64(v.Z)}.Hsv()
	return h
}

func luminance(v math.Vec3) float32 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

func TestBackground_MiddayIsDaySky(t *testing.T) {
	for _, day := range []float32{0, 91, 180, 300} {
		noon := Background(math.Vec3Up, testUniforms(day, 0.5))
		midnight := Background(math.Vec3Up, testUniforms(day, 0.0))

		h := hue(noon)
		assert.True(t, h > 170 && h < 260, "day %v: noon hue %.1f is not sky blue", day, h)
		assert.Greater(t, noon.Z, noon.X, "day %v: noon sky should be bluer than red", day)
		assert.Greater(t, luminance(noon), 3*luminance(midnight), "day %v", day)
	}
}

func assertVec3InDelta(t *testing.T, want, got math.Vec3, msg string) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, msg)
	assert.InDelta(t, want.Y, got.Y, 1e-5, msg)
	assert.InDelta(t, want.Z, got.Z, 1e-5, msg)
}

func TestBackground_SeasonalShift(t *testing.T) {
	up := math.Vec3Up
	overhead := func(base math.Vec3) math.Vec3 {
		return base.Sub(zenithShift).Add(math.Splat3(0.075))
	}

	// day 182 sits mid-year (blend 0), day 0 at the year's edge (blend 1),
	// day 91 halfway between.
	summer := Background(up, testUniforms(182, 0.5))
	winter := Background(up, testUniforms(0, 0.5))
	mid := Background(up, testUniforms(91, 0.5))
	assertVec3InDelta(t, overhead(summerSky), summer, "summer noon")
	assertVec3InDelta(t, overhead(winterSky), winter, "winter noon")
	assertVec3InDelta(t, summer.Lerp(winter, 0.5), mid, "mid-season noon")
	assert.NotEqual(t, summer, winter)

	// 0.875 is the middle of dusk, where the sunset colour peaks.
	assertVec3InDelta(t, summerDusk, Background(up, testUniforms(182, 0.875)), "summer dusk")
	assertVec3InDelta(t, winterDusk, Background(up, testUniforms(0, 0.875)), "winter dusk")
	assertVec3InDelta(t, summerDusk.Lerp(winterDusk, 0.5), Background(up, testUniforms(91, 0.875)), "mid-season dusk")
}

func TestBackground_WrapsWithoutSeam(t *testing.T) {
	late := Background(math.Vec3Up, testUniforms(10, 0.9999))
	early := Background(math.Vec3Up, testUniforms(10, 0))
	assert.InDelta(t, early.X, late.X, 0.01)
	assert.InDelta(t, early.Y, late.Y, 0.01)
	assert.InDelta(t, early.Z, late.Z, 0.01)
}

func TestBandOf(t *testing.T) {
	th := DefaultSettings().Thresholds
	assert.Equal(t, Dawn, th.BandOf(0.1))
	assert.Equal(t, Daytime, th.BandOf(0.25))
	assert.Equal(t, Daytime, th.BandOf(0.5))
	assert.Equal(t, Dusk, th.BandOf(0.75))
	assert.Equal(t, "dusk", Dusk.String())
	assert.True(t, th.IsNight(0.1))
	assert.True(t, th.IsNight(0.9))
	assert.False(t, th.IsNight(0.5))
}

func TestRaymarch_MissingTheSlabIsTransparent(t *testing.T) {
	m := NewModel(DefaultSettings())
	u := testUniforms(100, 0.5)
	bg := math.Vec3{X: 0.3, Y: 0.5, Z: 0.9}

	above := m.Raymarch(math.Vec3{Y: 5}, math.Vec3Up, bg, math.Vec2{}, u)
	assert.Equal(t, math.Vec4{}, above)

	below := m.Raymarch(math.Vec3{Y: -10}, math.Vec3Down, bg, math.Vec2{}, u)
	assert.Equal(t, math.Vec4{}, below)

	grazing := m.Raymarch(math.Vec3{Y: 5}, math.Vec3{X: 1}, bg, math.Vec2{}, u)
	assert.Zero(t, grazing.W)
}

func TestRaymarch_ResultIsBounded(t *testing.T) {
	m := NewModel(DefaultSettings())
	u := testUniforms(200, 0.3)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 64; i++ {
		rd := math.Vec3{X: rng.Float32()*2 - 1, Y: -rng.Float32(), Z: rng.Float32()*2 - 1}.Normalize()
		v := m.Raymarch(math.Vec3{Y: 0.2}, rd, math.Vec3One, math.Vec2{X: float32(i), Y: 3}, u)
		for _, c := range []float32{v.X, v.Y, v.Z, v.W} {
			require.True(t, c >= 0 && c <= 1, "component %v out of range for ray %v", c, rd)
		}
	}
}

func TestShade_AlwaysFiniteAndInRange(t *testing.T) {
	m := NewModel(DefaultSettings())
	nan := float32(stdmath.NaN())
	inf := float32(stdmath.Inf(1))

	cases := map[string]Params{
		"regular":    {Time: 12, Day: 40, Resolution: math.Vec2{X: 16, Y: 9}, Pointer: math.Vec2{X: 0.2, Y: 0.8}, Intensity: 1},
		"nan time":   {Time: nan, Day: 40, Resolution: math.Vec2{X: 16, Y: 9}, Intensity: 1},
		"inf day":    {Day: inf, Resolution: math.Vec2{X: 16, Y: 9}, Intensity: 1},
		"zero res":   {Day: 3},
		"bad cursor": {Day: 3, Resolution: math.Vec2{X: 8, Y: 8}, Pointer: math.Vec2{X: nan, Y: -4}, Intensity: inf},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			u := m.Uniforms(p)
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					c := m.Shade(math.Vec2{X: float32(x) * 4, Y: float32(y) * 2}, u)
					require.True(t, c.IsFinite(), "pixel %d,%d", x, y)
					assert.True(t, c.R >= 0 && c.R <= 1 && c.G >= 0 && c.G <= 1 && c.B >= 0 && c.B <= 1)
					assert.Equal(t, float32(1), c.A)
				}
			}
		})
	}
}

func TestStars_SparseAndOnlyAtNight(t *testing.T) {
	night := testUniforms(0, 0.9)
	noon := testUniforms(0, 0.5)
	rng := rand.New(rand.NewPCG(7, 11))

	const samples = 20000
	lit := 0
	for i := 0; i < samples; i++ {
		rd := math.Vec3{X: rng.Float32()*2 - 1, Y: 0.3 + rng.Float32(), Z: rng.Float32()*2 - 1}.Normalize()
		assert.Equal(t, math.Vec3Zero, Stars(rd, noon))
		if Stars(rd, night).X > 0 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
	assert.Less(t, lit, samples/20)

	assert.Equal(t, math.Vec3Zero, Stars(math.Vec3Down, night))
}

func TestSunDirection(t *testing.T) {
	for _, season := range []float32{0, 0.25, 0.5, 0.9} {
		noon := SunDirection(season, 0.5)
		midnight := SunDirection(season, 0)
		assert.InDelta(t, 1, noon.Length(), 1e-5)
		assert.Greater(t, noon.Y, float32(0.3), "season %v", season)
		assert.Less(t, midnight.Y, float32(0), "season %v", season)
	}
}

func TestWithTimeOfDay(t *testing.T) {
	u := testUniforms(50, 1.25)
	assert.InDelta(t, 0.25, u.TimeOfDay, 1e-6)
	u = u.WithTimeOfDay(float32(stdmath.NaN()))
	assert.Zero(t, u.TimeOfDay)
	assert.True(t, u.SunDir.IsFinite())
}

func TestTimeOfDay(t *testing.T) {
	assert.InDelta(t, 0.5, TimeOfDay(10, 0.05), 1e-6)
	assert.InDelta(t, 0.0, TimeOfDay(20, 0.05), 1e-6)
}

func TestSanitize(t *testing.T) {
	nan := float32(stdmath.NaN())
	got := Params{
		Time:       nan,
		Day:        -1,
		Resolution: math.Vec2{X: 0, Y: 100},
		Pointer:    math.Vec2{X: 2, Y: -1},
		Intensity:  -3,
	}.Sanitize()
	want := Params{
		Time:       0,
		Day:        363,
		Resolution: math.Vec2{X: 1, Y: 1},
		Pointer:    math.Vec2{X: 1, Y: 0},
		Intensity:  1,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Errorf("Sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestTonemap(t *testing.T) {
	prev := float32(-1)
	for i := 0; i <= 20; i++ {
		x := float32(i) / 10
		y := Tonemap(math.Splat3(x)).X
		assert.Greater(t, y, prev)
		assert.Less(t, y, float32(1))
		prev = y
	}
	assert.Zero(t, Tonemap(math.Splat3(-1)).X)
}

func TestPhase(t *testing.T) {
	assert.InDelta(t, 1/(4*stdmath.Pi), Phase(0, 0.3), 1e-6)
	// Negative asymmetry scatters more light backwards.
	assert.Greater(t, Phase(-0.3, -1), Phase(-0.3, 1))
}

func TestNoise(t *testing.T) {
	a := NewNoiseTexture(42)
	b := NewNoiseTexture(42)
	require.Equal(t, a.Pix, b.Pix)
	require.Len(t, a.Pix, NoiseSize*NoiseSize*4)

	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 500; i++ {
		p := math.Vec3{X: rng.Float32() * 40, Y: rng.Float32() * 40, Z: rng.Float32() * 40}
		n := a.Noise(p)
		require.True(t, n >= -1 && n <= 1, "noise(%v) = %v", p, n)
	}

	// Slices meet: the value just below an integer z matches the value at it.
	for _, z := range []float32{1, 2, 17, 255, 256} {
		p := math.Vec3{X: 3.3, Y: 8.7, Z: z}
		below := a.Noise(math.Vec3{X: p.X, Y: p.Y, Z: z - 1e-3})
		assert.InDelta(t, a.Noise(p), below, 0.02, "z=%v", z)
	}
}

func BenchmarkShade(b *testing.B) {
	m := NewModel(DefaultSettings())
	u := m.Uniforms(Params{Time: 5, Day: 120, Resolution: math.Vec2{X: 320, Y: 180}, Intensity: 1})
	frag := math.Vec2{X: 160, Y: 60}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Shade(frag, u)
	}
}
