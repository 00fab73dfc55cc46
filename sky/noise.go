package sky

import (
	"math/rand/v2"

	"sky-archive/math"
)

// NoiseSize is the edge length of the noise texture in texels.
const NoiseSize = 256

// Slice offsets: texel (x,y) of slice z+1 lives at (x+noiseOffsetX,
// y+noiseOffsetY) of slice z.
const (
	noiseOffsetX = 37
	noiseOffsetY = 239
)

// NoiseTexture is a tiling RGBA8 random texture. The green channel is the
// red channel shifted by the slice offsets, so one bilinear fetch yields two
// adjacent z slices of 3D value noise.
type NoiseTexture struct {
	Pix []uint8 // NoiseSize*NoiseSize*4, row-major
}

// NewNoiseTexture generates the texture deterministically from seed.
func NewNoiseTexture(seed uint64) *NoiseTexture {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	red := make([]uint8, NoiseSize*NoiseSize)
	for i := range red {
		red[i] = uint8(rng.UintN(256))
	}

	tex := &NoiseTexture{Pix: make([]uint8, NoiseSize*NoiseSize*4)}
	for y := 0; y < NoiseSize; y++ {
		for x := 0; x < NoiseSize; x++ {
			i := (y*NoiseSize + x) * 4
			tex.Pix[i] = red[y*NoiseSize+x]
			gx := wrap(x - noiseOffsetX)
			gy := wrap(y - noiseOffsetY)
			tex.Pix[i+1] = red[gy*NoiseSize+gx]
			tex.Pix[i+2] = uint8(rng.UintN(256))
			tex.Pix[i+3] = 255
		}
	}
	return tex
}

func wrap(i int) int {
	i %= NoiseSize
	if i < 0 {
		i += NoiseSize
	}
	return i
}

func (t *NoiseTexture) texel(x, y, ch int) float32 {
	return float32(t.Pix[(wrap(y)*NoiseSize+wrap(x))*4+ch]) / 255
}

// sampleRG bilinearly filters the red and green channels with texel
// centres on integer coordinates, repeating at the edges.
func (t *NoiseTexture) sampleRG(u, v float32) (r, g float32) {
	fu, fv := math.Floor(u), math.Floor(v)
	x, y := int(fu), int(fv)
	tx, ty := u-fu, v-fv

	bilerp := func(ch int) float32 {
		a := math.Mix(t.texel(x, y, ch), t.texel(x+1, y, ch), tx)
		b := math.Mix(t.texel(x, y+1, ch), t.texel(x+1, y+1, ch), tx)
		return math.Mix(a, b, ty)
	}
	return bilerp(0), bilerp(1)
}

// Noise is smooth 3D value noise in [-1,1].
func (t *NoiseTexture) Noise(p math.Vec3) float32 {
	i := p.Floor()
	f := p.Fract()
	f = math.Vec3{
		X: f.X * f.X * (3 - 2*f.X),
		Y: f.Y * f.Y * (3 - 2*f.Y),
		Z: f.Z * f.Z * (3 - 2*f.Z),
	}
	// Reduce the integer lattice modulo the texture so large coordinates
	// keep their float precision.
	iz := math.Mod(i.Z, NoiseSize)
	u := math.Mod(i.X+noiseOffsetX*iz, NoiseSize) + f.X
	v := math.Mod(i.Y+noiseOffsetY*iz, NoiseSize) + f.Y
	r, g := t.sampleRG(u, v)
	return math.Mix(g, r, f.Z)*2 - 1
}

var fbmShift = math.Vec3{X: 43, Y: 17, Z: 0}

// FBM sums octaves of Noise with halving amplitude, starting at 0.5.
func (t *NoiseTexture) FBM(p math.Vec3, octaves int) float32 {
	var sum float32
	amp := float32(0.5)
	for o := 0; o < octaves; o++ {
		sum += t.Noise(p) * amp
		amp *= 0.5
		p = p.Mul(2).Add(fbmShift)
	}
	return sum
}
