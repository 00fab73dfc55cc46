package photo

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	stdmath "math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"sky-archive/math"
	"sky-archive/scene"
	"sky-archive/timeline"
)

func TestImageIndex_YearPeriodic(t *testing.T) {
	const n = 8
	for day := 0; day < timeline.TotalDays; day++ {
		idx := ImageIndex(day, n)
		require.Equal(t, idx, ImageIndex(day+timeline.TotalDays, n), "day %d", day)
		require.Equal(t, idx, ImageIndex(day-timeline.TotalDays, n), "day %d", day)
		require.Equal(t, day%n, idx)
	}
	assert.Equal(t, 359%n, ImageIndex(-5, n))
	assert.Equal(t, (1000%timeline.TotalDays)%n, ImageIndex(1000, n))
	assert.Equal(t, 0, ImageIndex(10, 0))
}

func TestSeasonalImageIndex_YearPeriodic(t *testing.T) {
	for day := 0; day < timeline.TotalDays; day++ {
		assert.Equal(t, SeasonalImageIndex(day, 8), SeasonalImageIndex(day+timeline.TotalDays, 8), "day %d", day)
	}
}

func TestSeasonalImageIndex(t *testing.T) {
	cases := []struct {
		day, want int
	}{
		{0, 0},   // spring, straight
		{10, 2},  // spring, 10 mod 8
		{91, 4},  // summer, reversed 3
		{182, 6}, // autumn, even day keeps 6
		{183, 0}, // autumn, odd day reverses 7
		{273, 0}, // winter, weekday 0
		{275, 2}, // weekday 2
		{276, 3}, // weekday 3, first of the remainder
		{278, 5}, // weekday 5
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeasonalImageIndex(tc.day, 8), "day %d", tc.day)
	}
	for day := 0; day < timeline.TotalDays; day++ {
		for _, n := range []int{1, 3, 4, 8} {
			idx := SeasonalImageIndex(day, n)
			require.True(t, idx >= 0 && idx < n, "day %d count %d gave %d", day, n, idx)
		}
	}
}

func TestAssetSet(t *testing.T) {
	a := DefaultAssetSet()
	require.NoError(t, a.Validate())
	assert.Equal(t, filepath.Join("images", "day_1.jpeg"), a.Path(0))
	assert.Equal(t, filepath.Join("images", "day_8.jpeg"), a.Path(7))

	idx, ok := a.IndexOfFile("/x/images/day_3.jpeg")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = a.IndexOfFile("day_9.jpeg")
	assert.False(t, ok)
	_, ok = a.IndexOfFile("day_3.jpeg.tmp")
	assert.False(t, ok)
	_, ok = a.IndexOfFile("notes.txt")
	assert.False(t, ok)

	a.Mapping = MappingSeasonal
	assert.Equal(t, 4, a.Index(91))

	assert.Error(t, AssetSet{Pattern: "x", Count: 8}.Validate())
	assert.Error(t, AssetSet{Pattern: "day_%d.png", Count: 0}.Validate())

	m, err := ParseMapping("Seasonal")
	require.NoError(t, err)
	assert.Equal(t, MappingSeasonal, m)
	_, err = ParseMapping("random")
	assert.Error(t, err)
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func pollUntil(t *testing.T, l *Loader, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatal("loader did not settle")
		}
		l.Poll()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoader_LoadsFramesAndFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	assets := AssetSet{Dir: dir, Pattern: "day_%d.png", Count: 3, First: 1}
	writePNG(t, assets.Path(0), color.RGBA{R: 255, A: 255})
	writePNG(t, assets.Path(1), color.RGBA{B: 255, A: 255})

	l := NewLoader(assets, zaptest.NewLogger(t))
	defer l.Close()
	for i := 0; i < 3; i++ {
		l.Request(i)
	}
	pollUntil(t, l, func() bool { return !l.Pending(0) && !l.Pending(1) && !l.Pending(2) })

	red, ok := l.Get(0)
	require.True(t, ok)
	assert.Equal(t, 4, red.Width)
	assert.Equal(t, float32(1), red.At(0, 0).R)

	_, ok = l.Get(2)
	assert.False(t, ok)
	assert.True(t, errors.Is(l.Err(2), ErrAssetLoad))
	ph := l.Placeholder(2)
	require.NotNil(t, ph)
	assert.Same(t, ph, l.Placeholder(2))
	assert.Len(t, ph.Pixels, ph.Width*ph.Height*4)

	// Repeated requests for a broken frame do not retry.
	l.Request(2)
	assert.False(t, l.Pending(2))

	// A rewritten file is picked up after invalidation.
	writePNG(t, assets.Path(2), color.RGBA{G: 255, A: 255})
	l.Invalidate(2)
	l.Request(2)
	pollUntil(t, l, func() bool { _, ok := l.Get(2); return ok })
	green, _ := l.Get(2)
	assert.Equal(t, float32(1), green.At(1, 1).G)
}

func TestLoader_RetainCancelsSupersededLoads(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan int, 8)
	blocking := func(ctx context.Context, path string) (*scene.Texture, error) {
		started <- 1
		<-ctx.Done()
		return nil, ctx.Err()
	}
	l := NewLoader(AssetSet{Dir: "unused", Pattern: "%d.png", Count: 8}, nil, WithDecoder(blocking))

	for i := 0; i < 4; i++ {
		l.Request(i)
		<-started
	}
	l.Retain(3)
	for i := 0; i < 3; i++ {
		assert.False(t, l.Pending(i), "index %d should be cancelled", i)
	}
	assert.True(t, l.Pending(3))

	l.Close()
	l.Poll()
	for i := 0; i < 4; i++ {
		assert.NoError(t, l.Err(i), "cancellation is not a load failure")
	}

	// Closed loaders ignore new work.
	l.Request(5)
	assert.False(t, l.Pending(5))
}

func TestWatcher_ReportsChangedFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	assets := AssetSet{Dir: dir, Pattern: "day_%d.png", Count: 8, First: 1}
	w, err := NewWatcher(context.Background(), assets, zaptest.NewLogger(t), 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))
	writePNG(t, assets.Path(1), color.RGBA{A: 255})

	select {
	case idx := <-w.Changes():
		assert.Equal(t, 1, idx)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	require.NoError(t, w.Close())
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(context.Background(), AssetSet{Dir: filepath.Join(t.TempDir(), "nope"), Pattern: "%d", Count: 1}, nil, 0)
	assert.Error(t, err)
}

func solid(r, g, b uint8) *scene.Texture {
	return scene.NewSolidTexture("solid", r, g, b, 255)
}

func TestComposite_CrossFade(t *testing.T) {
	c := Composite{Current: solid(255, 0, 0), Next: solid(0, 0, 255)}
	mid := math.Vec2{X: 0.5, Y: 0.5}

	assert.Equal(t, float32(1), c.Shade(mid).R)

	c.Weight = 1
	got := c.Shade(mid)
	assert.Zero(t, got.R)
	assert.Equal(t, float32(1), got.B)

	c.Weight = 0.5
	got = c.Shade(mid)
	assert.InDelta(t, 0.5, got.R, 1e-6)
	assert.InDelta(t, 0.5, got.B, 1e-6)

	c.Weight = float32(stdmath.NaN())
	assert.True(t, c.Shade(mid).IsFinite())
}

func TestComposite_Grading(t *testing.T) {
	c := Composite{Current: solid(128, 128, 128), Grading: Grading{Vignette: true}}
	centre := c.Shade(math.Vec2{X: 0.5, Y: 0.5})
	corner := c.Shade(math.Vec2{X: 0, Y: 0})
	assert.InDelta(t, 128.0/255, centre.G, 1e-6)
	assert.Zero(t, corner.G)

	shifted := Composite{Current: solid(128, 128, 128), DayFactor: 0.25, Grading: Grading{ColorShift: 0.1}}
	got := shifted.Shade(math.Vec2{X: 0.5, Y: 0.5})
	// sin(pi/2) = 1 pushes red up by the full amplitude.
	assert.InDelta(t, 128.0/255+0.1, got.R, 1e-5)

	assert.Equal(t, float32(1), Vignette(math.Vec2{X: 0.5, Y: 0.5}))
}
