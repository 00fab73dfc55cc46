package renderer

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sky-archive/core"
	"sky-archive/math"
	"sky-archive/photo"
	"sky-archive/sky"
)

// Canvas is a software Target backed by an RGBA image. Rows are shaded in
// parallel bands; every pixel is independent so bands never share writes.
type Canvas struct {
	img     *image.RGBA
	workers int
}

// NewCanvas allocates a width×height canvas. workers <= 0 uses one band per
// CPU.
func NewCanvas(width, height, workers int) *Canvas {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Canvas{
		img:     image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1))),
		workers: workers,
	}
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image is the last drawn frame. It is overwritten by the next draw.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Resize reallocates the canvas when the size changes.
func (c *Canvas) Resize(width, height int) {
	w, h := c.Size()
	if w == width && h == height || width <= 0 || height <= 0 {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// DrawSky shades every pixel with the sky model. Shading coordinates have
// their origin at the bottom-left like gl_FragCoord.
func (c *Canvas) DrawSky(ctx context.Context, m *sky.Model, u sky.Uniforms) error {
	_, h := c.Size()
	return c.shade(ctx, func(x, y int) core.Color {
		return m.Shade(math.Vec2{X: float32(x) + 0.5, Y: float32(h-1-y) + 0.5}, u)
	})
}

// DrawPhoto composites the photo frames with uv from the top-left corner.
func (c *Canvas) DrawPhoto(ctx context.Context, comp photo.Composite) error {
	w, h := c.Size()
	return c.shade(ctx, func(x, y int) core.Color {
		uv := math.Vec2{X: (float32(x) + 0.5) / float32(w), Y: (float32(y) + 0.5) / float32(h)}
		return comp.Shade(uv)
	})
}

func (c *Canvas) shade(ctx context.Context, fn func(x, y int) core.Color) error {
	w, h := c.Size()
	bands := min(c.workers, h)
	rowsPer := (h + bands - 1) / bands

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < h; start += rowsPer {
		end := min(start+rowsPer, h)
		g.Go(func() error {
			for y := start; y < end; y++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				row := c.img.Pix[y*c.img.Stride : y*c.img.Stride+w*4]
				for x := 0; x < w; x++ {
					px := fn(x, y).ToRGBA8()
					row[x*4+0] = px.R
					row[x*4+1] = px.G
					row[x*4+2] = px.B
					row[x*4+3] = px.A
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// WritePNG encodes the current frame.
func (c *Canvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
