package scene

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"sky-archive/core"
	"sky-archive/math"
)

// WrapMode selects how texture coordinates outside [0,1] are resolved.
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	Wrap   WrapMode
	// GLID is the OpenGL texture object ID, set by the OpenGL surface.
	GLID uint32
}

// LoadTexture reads a PNG or JPEG file from disk and returns a CPU-side Texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()
	return DecodeTexture(path, f)
}

// DecodeTexture decodes any registered image format into RGBA8.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode texture %q: empty image", name)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return FromRGBA(name, rgba), nil
}

// FromRGBA wraps an already decoded image without copying it.
func FromRGBA(name string, img *image.RGBA) *Texture {
	return &Texture{
		Name:   name,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Pixels: img.Pix,
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// Image exposes the pixels as an image.RGBA sharing the same backing array.
func (t *Texture) Image() *image.RGBA {
	return &image.RGBA{Pix: t.Pixels, Stride: t.Width * 4, Rect: image.Rect(0, 0, t.Width, t.Height)}
}

// At returns texel (x,y) with the texture's wrap mode applied.
func (t *Texture) At(x, y int) core.Color {
	x = t.wrap(x, t.Width)
	y = t.wrap(y, t.Height)
	i := (y*t.Width + x) * 4
	p := t.Pixels[i : i+4 : i+4]
	return core.ColorFromRGBA8(p[0], p[1], p[2], p[3])
}

func (t *Texture) wrap(i, n int) int {
	if t.Wrap == WrapRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return max(0, min(i, n-1))
}

// SampleBilinear filters the texture at uv, where (0,0) is the top-left
// corner of the first texel and (1,1) the bottom-right of the last one.
func (t *Texture) SampleBilinear(uv math.Vec2) core.Color {
	if t == nil || t.Width == 0 || t.Height == 0 || !uv.IsFinite() {
		return core.ColorBlack
	}
	fx := uv.X*float32(t.Width) - 0.5
	fy := uv.Y*float32(t.Height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	top := t.At(ix, iy).Lerp(t.At(ix+1, iy), tx)
	bottom := t.At(ix, iy+1).Lerp(t.At(ix+1, iy+1), tx)
	return top.Lerp(bottom, ty)
}
