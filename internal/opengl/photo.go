package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"sky-archive/math"
	"sky-archive/photo"
)

// photoFragSrc is photo.Composite.Shade on the GPU. Images are uploaded
// top row first, so the top-left uv samples them directly.
const photoFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D current; // unit 0
uniform sampler2D next;    // unit 1
uniform bool  hasCurrent;
uniform bool  hasNext;
uniform float weight;
uniform float dayFactor;
uniform float colorShift;
uniform bool  vignette;

const float PI = 3.14159265;

void main() {
    vec2 uv = vec2(fragUV.x, 1.0 - fragUV.y);
    vec4 a = hasCurrent ? texture(current, uv) : vec4(0.0, 0.0, 0.0, 1.0);
    vec4 col = a;
    if (weight > 0.0) {
        vec4 b = hasNext ? texture(next, uv) : vec4(0.0, 0.0, 0.0, 1.0);
        col = mix(a, b, weight);
    }
    vec3 rgb = col.rgb;

    if (colorShift != 0.0) {
        float ph = dayFactor * 2.0 * PI;
        rgb += vec3(sin(ph), sin(ph + 2.0), sin(ph + 4.0)) * colorShift;
    }
    if (vignette) {
        float d = length(uv - 0.5) * 1.5;
        rgb *= 1.0 - smoothstep(0.5, 1.0, d);
    }
    outColor = vec4(clamp(rgb, 0.0, 1.0), 1.0);
}
` + "\x00"

var photoUniforms = []string{
	"current", "next", "hasCurrent", "hasNext", "weight",
	"dayFactor", "colorShift", "vignette",
}

type photoPass struct {
	*pass
}

func newPhotoPass() (*photoPass, error) {
	p, err := newPass(photoFragSrc, photoUniforms...)
	if err != nil {
		return nil, err
	}
	gl.UseProgram(p.prog)
	gl.Uniform1i(p.loc("current"), 0)
	gl.Uniform1i(p.loc("next"), 1)
	return &photoPass{pass: p}, nil
}

// draw expects the composite's textures to be uploaded already; a texture
// without a GLID reads as black.
func (pp *photoPass) draw(c photo.Composite) {
	w := math.Saturate(c.Weight)
	if !math.IsFinite(c.Weight) {
		w = 0
	}

	gl.UseProgram(pp.prog)
	gl.Uniform1f(pp.loc("weight"), w)
	gl.Uniform1f(pp.loc("dayFactor"), c.DayFactor)
	gl.Uniform1f(pp.loc("colorShift"), c.Grading.ColorShift)
	gl.Uniform1i(pp.loc("vignette"), boolToInt32(c.Grading.Vignette))

	gl.Uniform1i(pp.loc("hasCurrent"), 0)
	if c.Current != nil && c.Current.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, c.Current.GLID)
		gl.Uniform1i(pp.loc("hasCurrent"), 1)
	}
	gl.Uniform1i(pp.loc("hasNext"), 0)
	if c.Next != nil && c.Next.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, c.Next.GLID)
		gl.Uniform1i(pp.loc("hasNext"), 1)
	}

	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
