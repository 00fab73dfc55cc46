package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky-archive/math"
)

func twoTexels() *Texture {
	return &Texture{
		Name:   "ramp",
		Width:  2,
		Height: 1,
		Pixels: []byte{0, 0, 0, 255, 255, 255, 255, 255},
	}
}

func TestSampleBilinear(t *testing.T) {
	tex := twoTexels()

	assert.Equal(t, float32(0), tex.SampleBilinear(math.Vec2{X: 0.25, Y: 0.5}).R)
	assert.Equal(t, float32(1), tex.SampleBilinear(math.Vec2{X: 0.75, Y: 0.5}).R)
	assert.InDelta(t, 0.5, tex.SampleBilinear(math.Vec2{X: 0.5, Y: 0.5}).R, 1e-6)

	// Clamped edges hold the border texel.
	assert.Equal(t, float32(0), tex.SampleBilinear(math.Vec2{X: -3, Y: 0.5}).R)
	assert.Equal(t, float32(1), tex.SampleBilinear(math.Vec2{X: 5, Y: 0.5}).R)

	// Repeating edges blend across the seam.
	tex.Wrap = WrapRepeat
	assert.InDelta(t, 0.5, tex.SampleBilinear(math.Vec2{X: 0, Y: 0.5}).R, 1e-6)

	var none *Texture
	assert.Equal(t, float32(0), none.SampleBilinear(math.Vec2{}).R)
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	img.Set(10, 10, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := DecodeTexture("mem", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Len(t, tex.Pixels, 3*2*4)
	assert.Equal(t, uint8(200), tex.Pixels[0])

	_, err = DecodeTexture("junk", bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestCreateSkyDome_FacesInward(t *testing.T) {
	dome := CreateSkyDome(10, 16, 8)
	require.Len(t, dome.Vertices, 17*9)
	assert.Equal(t, uint32(16*8*6), dome.IndexCount)

	for i, v := range dome.Vertices {
		assert.InDelta(t, 10, v.Position.Length(), 1e-4, "vertex %d", i)
		assert.Less(t, v.Normal.Dot(v.Position), float32(0), "vertex %d normal points outward", i)
	}

	// The geometric normal of a mid-latitude triangle points at the centre.
	i := (4*16 + 3) * 6
	a := dome.Vertices[dome.Indices[i]].Position
	b := dome.Vertices[dome.Indices[i+1]].Position
	c := dome.Vertices[dome.Indices[i+2]].Position
	n := b.Sub(a).Cross(c.Sub(a))
	assert.Less(t, n.Dot(a), float32(0))

	assert.InDelta(t, -10, dome.Min.Y, 1e-4)
	assert.InDelta(t, 10, dome.Max.Y, 1e-4)
}

func TestExportDome_LoadsBack(t *testing.T) {
	dome := CreateSkyDome(10, 8, 4)
	dome.Texture = twoTexels()

	path := filepath.Join(t.TempDir(), "dome.glb")
	require.NoError(t, ExportDome(path, dome))

	got, err := LoadDome(path)
	require.NoError(t, err)
	assert.Equal(t, len(dome.Vertices), len(got.Vertices))
	assert.Equal(t, dome.Indices, got.Indices)
	assert.Equal(t, dome.Vertices[5].UV, got.Vertices[5].UV)
	require.NotNil(t, got.Texture)
	assert.Equal(t, 2, got.Texture.Width)
	assert.Equal(t, dome.Texture.Pixels, got.Texture.Pixels)

	assert.Error(t, ExportDome(path, &Mesh{}))
}
