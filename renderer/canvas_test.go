package renderer

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"sky-archive/math"
	"sky-archive/photo"
	"sky-archive/scene"
	"sky-archive/sky"
)

func TestCanvas_PhotoOrientation(t *testing.T) {
	// Top texel red, bottom texel blue.
	tex := &scene.Texture{Width: 1, Height: 2, Pixels: []byte{255, 0, 0, 255, 0, 0, 255, 255}}
	c := NewCanvas(1, 2, 4)
	require.NoError(t, c.DrawPhoto(context.Background(), photo.Composite{Current: tex}))

	assert.Equal(t, color.RGBA{R: 255, A: 255}, c.Image().RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, c.Image().RGBAAt(0, 1))
}

func TestCanvas_SkyRowsMatchSerialShading(t *testing.T) {
	m := sky.NewModel(sky.DefaultSettings())
	c := NewCanvas(9, 7, 4)
	u := m.Uniforms(sky.Params{Time: 30, Day: 250, Resolution: mathVec(9, 7), Intensity: 1})
	require.NoError(t, c.DrawSky(context.Background(), m, u))

	for _, p := range [][2]int{{0, 0}, {8, 6}, {4, 3}} {
		x, y := p[0], p[1]
		want := m.Shade(mathVec(float32(x)+0.5, float32(6-y)+0.5), u).ToRGBA8()
		assert.Equal(t, want, c.Image().RGBAAt(x, y), "pixel %d,%d", x, y)
	}
}

func TestCanvas_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCanvas(4, 4, 2)
	err := c.DrawPhoto(ctx, photo.Composite{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCanvas_ResizeAndPNG(t *testing.T) {
	c := NewCanvas(0, 0, 0)
	w, h := c.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	c.Resize(6, 3)
	w, h = c.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 3, h)
	c.Resize(-1, 5)
	w, _ = c.Size()
	assert.Equal(t, 6, w)

	var buf bytes.Buffer
	require.NoError(t, c.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
}

func writeFrame(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	tex := scene.NewSolidTexture("frame", c.R, c.G, c.B, c.A)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, tex.Image()))
	require.NoError(t, f.Close())
}

func TestPhoto_CrossFadeWithFallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	assets := photo.AssetSet{Dir: dir, Pattern: "day_%d.png", Count: 3, First: 1}
	writeFrame(t, assets.Path(0), color.RGBA{R: 255, A: 255})
	writeFrame(t, assets.Path(1), color.RGBA{G: 255, A: 255})
	// Frame 2 is missing.

	p, err := NewPhoto(assets, photo.Grading{}, true, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	opt := DefaultEngineOptions()
	e := NewEngine(p, opt, zaptest.NewLogger(t))

	waitLoaded := func(idx ...int) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for {
			ready := true
			for _, i := range idx {
				_, ok := p.Loader().Get(i)
				ready = ready && (ok || p.Loader().Err(i) != nil)
			}
			if ready {
				return
			}
			require.False(t, time.Now().After(deadline), "frames %v never resolved", idx)
			e.Tick(0, View{})
			time.Sleep(5 * time.Millisecond)
		}
	}
	waitLoaded(0, 1)

	c := NewCanvas(2, 2, 1)
	require.NoError(t, e.RenderFrame(context.Background(), c))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c.Image().RGBAAt(1, 1))

	// Half way to day 1 is an even blend of red and green.
	e.SetDay(1)
	for e.Frame().Weight < 0.5 {
		e.Tick(0.01, View{})
	}
	comp := p.Composite(e.Frame())
	assert.InDelta(t, 0.5, comp.Weight, 0.05)
	require.NoError(t, e.RenderFrame(context.Background(), c))
	px := c.Image().RGBAAt(0, 0)
	assert.InDelta(t, 128, int(px.R), 16)
	assert.InDelta(t, 128, int(px.G), 16)

	// A missing frame renders its placeholder instead of failing.
	e.SetDay(2)
	for i := 0; i < 200; i++ {
		e.Tick(1.0/60, View{})
	}
	waitLoaded(2)
	require.NoError(t, e.RenderFrame(context.Background(), c))
	comp = p.Composite(e.Frame())
	assert.Equal(t, p.Loader().Placeholder(2), comp.Current)
	assert.ErrorIs(t, p.Loader().Err(2), photo.ErrAssetLoad)

	require.NoError(t, e.Close())
}

func mathVec(x, y float32) math.Vec2 { return math.Vec2{X: x, Y: y} }

func TestPhoto_WaitReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	assets := photo.AssetSet{Dir: dir, Pattern: "day_%d.png", Count: 2, First: 1}
	writeFrame(t, assets.Path(0), color.RGBA{B: 255, A: 255})

	p, err := NewPhoto(assets, photo.Grading{}, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.WaitReady(ctx, Frame{DayA: 0, DayB: 1}))

	_, ok := p.Loader().Get(0)
	assert.True(t, ok)
	assert.ErrorIs(t, p.Loader().Err(1), photo.ErrAssetLoad, "missing frame resolves as failed")

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	p.Loader().Invalidate(0)
	assert.ErrorIs(t, p.WaitReady(cancelled, Frame{DayA: 0, DayB: 0}), context.Canceled)
}
