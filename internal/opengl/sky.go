package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"sky-archive/sky"
)

// skyFragSrc mirrors package sky pixel for pixel, give or take float
// precision; per-frame terms (sun, camera, sunlight) come in as uniforms.
// GLSL smoothstep is undefined for edge0 >= edge1, hence sstep.
const skyFragSrc = `
#version 410 core
out vec4 outColor;

uniform sampler2D noiseTex;
uniform vec2  resolution;
uniform float time;
uniform vec2  pointer;
uniform float intensity;
uniform float seasonFactor;
uniform float seasonBlend;
uniform float timeOfDay;
uniform vec3  sunDir;
uniform vec3  sunLight;
uniform vec3  camOrigin;
uniform mat3  camBasis;
uniform vec4  thresholds; // dawn end, day end, night before, night after
uniform vec3  slab;       // bottom, top, far clip
uniform int   maxSteps;
uniform float phaseG;
uniform float starThreshold;
uniform float grain;

const float PI = 3.14159265;
const vec3 nightSky = vec3(0.05, 0.05, 0.1);

float sstep(float e0, float e1, float x) {
    float t = clamp((x - e0) / (e1 - e0), 0.0, 1.0);
    return t * t * (3.0 - 2.0 * t);
}

float noise(vec3 x) {
    vec3 i = floor(x);
    vec3 f = fract(x);
    f = f * f * (3.0 - 2.0 * f);
    float iz = mod(i.z, 256.0);
    vec2 uv = mod(i.xy + vec2(37.0, 239.0) * iz, 256.0) + f.xy;
    vec2 rg = textureLod(noiseTex, (uv + 0.5) / 256.0, 0.0).xy;
    return mix(rg.y, rg.x, f.z) * 2.0 - 1.0;
}

float fbm(vec3 p, int octaves) {
    float sum = 0.0;
    float amp = 0.5;
    for (int o = 0; o < octaves; o++) {
        sum += noise(p) * amp;
        amp *= 0.5;
        p = p * 2.0 + vec3(43.0, 17.0, 0.0);
    }
    return sum;
}

float density(vec3 p, int octaves) {
    vec3 q = p - vec3(0.0, 0.1, 1.0) * time * 0.1;
    q.xy += (pointer - 0.5) * intensity * 0.3;
    float ph = seasonFactor * 2.0 * PI;
    q.x += sin(ph) * 2.0;
    q.z += cos(ph) * 2.0;

    float f = fbm(q * 0.3, 3) * 0.5 + 0.5;
    if (octaves >= 2) {
        f += fbm(q * 0.7, min(octaves, 5)) * 0.25;
    }
    float heightOffset = mix(-0.4, -0.8, seasonBlend);
    float shape = mix(1.0, 1.5, seasonBlend);
    f = pow(clamp(f, 0.0, 1.0), shape);
    return 1.5 * f - 0.5 - p.y + heightOffset;
}

vec3 daySky(vec3 rd) {
    vec3 base = mix(vec3(0.5, 0.7, 1.0), vec3(0.6, 0.8, 0.9), seasonBlend);
    return base - vec3(0.2, 0.1, 0.2) * rd.y + 0.075;
}

vec3 background(vec3 rd) {
    vec3 day = daySky(rd);
    float tod = timeOfDay;
    if (tod < thresholds.x) {
        return mix(nightSky, day, sstep(0.0, 1.0, tod / thresholds.x));
    }
    if (tod < thresholds.y) {
        return day;
    }
    vec3 sunset = mix(vec3(0.8, 0.3, 0.1), vec3(0.6, 0.2, 0.1), seasonBlend);
    float s = (tod - thresholds.y) / (1.0 - thresholds.y);
    if (s < 0.5) {
        return mix(day, sunset, s * 2.0);
    }
    return mix(sunset, nightSky, s * 2.0 - 1.0);
}

float starHash(vec3 p) {
    return fract(sin(dot(p, vec3(13.5345, 41.2345, 73.2345))) * 29342.2346);
}

vec3 stars(vec3 rd) {
    bool night = timeOfDay < thresholds.z || timeOfDay > thresholds.w;
    if (!night || rd.y <= 0.0) {
        return vec3(0.0);
    }
    float seed = starHash(floor(rd * 500.0));
    if (seed <= starThreshold) {
        return vec3(0.0);
    }
    float level = sstep(starThreshold, 0.999, seed);
    float twinkle = sin(time * seed * 5.0 + seed * 20.0) * 0.5 + 0.5;
    float fade = 1.0 - sstep(thresholds.z, 0.5, timeOfDay) * sstep(thresholds.w, 0.5, timeOfDay);
    return vec3(level * twinkle * fade * sstep(0.0, 0.2, rd.y));
}

float sunVisibility() {
    return sstep(-0.1, 0.05, sunDir.y);
}

vec3 sunGlow(vec3 rd) {
    float sun = clamp(dot(sunDir, rd), 0.0, 1.0);
    float noon = timeOfDay * 2.0 - 1.0;
    float mask = pow(sun, 300.0 / (1.01 - noon * noon));
    vec3 col = vec3(1.0, 0.7, 0.4) * 0.25 * pow(sun, 5.0)
             + vec3(1.0, 0.8, 0.6) * 0.8 * mask
             + vec3(1.0, 0.5, 0.3) * 0.5 * sun * sun;
    return col * sunVisibility();
}

float phaseHG(float g, float c) {
    float g2 = g * g;
    float d = pow(1.0 + g2 - 2.0 * g * c, 1.5);
    return d <= 0.0 ? 0.0 : (1.0 - g2) / d / (4.0 * PI);
}

float interleavedGradient(vec2 frag) {
    return fract(52.9829189 * fract(0.06711056 * frag.x + 0.00583715 * frag.y));
}

vec4 raymarch(vec3 ro, vec3 rd, vec3 bg) {
    float yb = slab.x;
    float yt = slab.y;
    float tmin = 0.0;
    float tmax = slab.z;
    if (ro.y > yt) {
        if (rd.y >= 0.0) return vec4(0.0);
        tmin = (yt - ro.y) / rd.y;
        tmax = min((yb - ro.y) / rd.y, tmin + slab.z);
    } else if (ro.y < yb) {
        if (rd.y <= 0.0) return vec4(0.0);
        tmin = (yb - ro.y) / rd.y;
        tmax = min((yt - ro.y) / rd.y, tmin + slab.z);
    } else if (rd.y > 0.0) {
        tmax = min(tmax, (yt - ro.y) / rd.y);
    } else if (rd.y < 0.0) {
        tmax = min(tmax, (yb - ro.y) / rd.y);
    }

    float ph = phaseHG(phaseG, dot(sunDir, rd));
    vec4 sum = vec4(0.0);
    float t = tmin + 0.1 * interleavedGradient(gl_FragCoord.xy);
    for (int i = 0; i < maxSteps; i++) {
        float dt = max(0.05, 0.02 * t);
        int octaves = max(5 - int(log2(1.0 + t * 0.5)), 1);
        vec3 pos = ro + rd * t;

        float den = density(pos, octaves);
        if (den > 0.01) {
            float shadow = density(pos + sunDir * 0.3, octaves);
            float dif = clamp((den - shadow) / 0.25, 0.0, 1.0);
            vec3 lin = vec3(0.65, 0.65, 0.75) * 1.1 + sunLight * 0.8 * dif * ph * 2.0;
            vec3 col = mix(vec3(1.0, 0.95, 0.8), vec3(0.25, 0.3, 0.35), clamp(den, 0.0, 1.0)) * lin;
            col = mix(col, bg, 1.0 - exp2(-0.1 * t));
            float a = min(den * 8.0 * dt, 1.0);
            sum += vec4(col * a, a) * (1.0 - sum.a);
        }

        t += dt;
        if (t > tmax || sum.a > 0.99) break;
    }
    return clamp(sum, 0.0, 1.0);
}

float grainHash(vec2 p) {
    return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453);
}

float tm(float x) {
    x = pow(max(x, 0.0), 0.8);
    x = x / (1.0 + x);
    return pow(x, 1.0 / 0.8);
}

void main() {
    vec2 frag = gl_FragCoord.xy;
    vec2 p = (2.0 * frag - resolution) / resolution.y;
    vec3 rd = camBasis * normalize(vec3(p, 1.5));

    vec3 bg = background(rd) + stars(rd) + sunGlow(rd);
    vec4 clouds = raymarch(camOrigin, rd, bg);
    vec3 col = bg * (1.0 - clouds.a) + clouds.rgb;
    col += vec3(1.0, 0.4, 0.2) * 0.2 * pow(clamp(dot(sunDir, rd), 0.0, 1.0), 3.0) * sunVisibility();
    col = clamp(col, 0.0, 1.0);

    float n = grainHash(frag + vec2(fract(time), fract(time * 1.3)));
    col = mix(col, col * (0.9 + 0.1 * n), grain);
    outColor = vec4(tm(col.r), tm(col.g), tm(col.b), 1.0);
}
` + "\x00"

var skyUniforms = []string{
	"noiseTex", "resolution", "time", "pointer", "intensity",
	"seasonFactor", "seasonBlend", "timeOfDay", "sunDir", "sunLight",
	"camOrigin", "camBasis", "thresholds", "slab", "maxSteps",
	"phaseG", "starThreshold", "grain",
}

// skyPass owns the sky program and the noise texture of the model it was
// last drawn with.
type skyPass struct {
	*pass
	model    *sky.Model
	noiseTex uint32
}

func newSkyPass() (*skyPass, error) {
	p, err := newPass(skyFragSrc, skyUniforms...)
	if err != nil {
		return nil, err
	}
	gl.UseProgram(p.prog)
	gl.Uniform1i(p.loc("noiseTex"), 0)
	return &skyPass{pass: p}, nil
}

func (sp *skyPass) bindModel(m *sky.Model) {
	if sp.model == m && sp.noiseTex != 0 {
		return
	}
	if sp.noiseTex != 0 {
		gl.DeleteTextures(1, &sp.noiseTex)
	}
	sp.noiseTex = uploadNoise(m.Noise())
	sp.model = m
}

func (sp *skyPass) draw(m *sky.Model, u sky.Uniforms) {
	sp.bindModel(m)
	s := u.Settings
	th := s.Thresholds
	light := sky.Sunlight(u)
	basis := u.Camera.Basis

	gl.UseProgram(sp.prog)
	gl.Uniform2f(sp.loc("resolution"), u.Resolution.X, u.Resolution.Y)
	gl.Uniform1f(sp.loc("time"), u.Time)
	gl.Uniform2f(sp.loc("pointer"), u.Pointer.X, u.Pointer.Y)
	gl.Uniform1f(sp.loc("intensity"), u.Intensity)
	gl.Uniform1f(sp.loc("seasonFactor"), u.SeasonFactor)
	gl.Uniform1f(sp.loc("seasonBlend"), u.SeasonBlend)
	gl.Uniform1f(sp.loc("timeOfDay"), u.TimeOfDay)
	gl.Uniform3f(sp.loc("sunDir"), u.SunDir.X, u.SunDir.Y, u.SunDir.Z)
	gl.Uniform3f(sp.loc("sunLight"), light.X, light.Y, light.Z)
	gl.Uniform3f(sp.loc("camOrigin"), u.Camera.Origin.X, u.Camera.Origin.Y, u.Camera.Origin.Z)
	// Mat3 is three column Vec3s, already GL's layout.
	gl.UniformMatrix3fv(sp.loc("camBasis"), 1, false, (*float32)(unsafe.Pointer(&basis[0].X)))
	gl.Uniform4f(sp.loc("thresholds"), th.DawnEnd, th.DayEnd, th.NightBefore, th.NightAfter)
	gl.Uniform3f(sp.loc("slab"), s.SlabBottom, s.SlabTop, s.FarClip)
	gl.Uniform1i(sp.loc("maxSteps"), int32(s.MaxSteps))
	gl.Uniform1f(sp.loc("phaseG"), s.PhaseG)
	gl.Uniform1f(sp.loc("starThreshold"), s.StarThreshold)
	gl.Uniform1f(sp.loc("grain"), s.GrainAmount)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sp.noiseTex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (sp *skyPass) destroy() {
	if sp.noiseTex != 0 {
		gl.DeleteTextures(1, &sp.noiseTex)
		sp.noiseTex = 0
	}
	sp.pass.destroy()
}
