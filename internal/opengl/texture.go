package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"sky-archive/scene"
	"sky-archive/sky"
)

// UploadTexture uploads tex with linear filtering and no mipmaps, and sets
// its GLID. Textures that already have a GLID are left alone.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("nil texture")
	}
	if tex.GLID != 0 {
		return nil
	}
	if len(tex.Pixels) < tex.Width*tex.Height*4 || tex.Width <= 0 || tex.Height <= 0 {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	wrap := int32(gl.CLAMP_TO_EDGE)
	if tex.Wrap == scene.WrapRepeat {
		wrap = gl.REPEAT
	}
	tex.GLID = upload(tex.Width, tex.Height, tex.Pixels, wrap)
	return nil
}

// uploadNoise stores the sky noise texture; it tiles, so it repeats.
func uploadNoise(n *sky.NoiseTexture) uint32 {
	return upload(sky.NoiseSize, sky.NoiseSize, n.Pix, gl.REPEAT)
}

func upload(width, height int, pix []uint8, wrap int32) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Rows are tightly packed whatever the width.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&pix[0]),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}
