package opengl

import (
	"context"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"sky-archive/photo"
	"sky-archive/renderer"
	"sky-archive/scene"
	"sky-archive/sky"
)

// Surface is a renderer.Target that draws into the current GL context's
// default framebuffer.
type Surface struct {
	log *zap.Logger

	width, height int
	quadVAO       uint32 // empty VAO for the fullscreen triangle

	sky   *skyPass
	photo *photoPass

	// uploaded photo textures, released once no composite shows them
	resident map[*scene.Texture]struct{}
}

// NewSurface initialises OpenGL and compiles both passes. It must be called
// after a context was made current. Every failure wraps
// renderer.ErrRendererInit.
func NewSurface(width, height int, log *zap.Logger) (*Surface, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: initialize OpenGL: %w", renderer.ErrRendererInit, err)
	}
	log.Info("opengl ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	sp, err := newSkyPass()
	if err != nil {
		return nil, fmt.Errorf("%w: sky shader: %w", renderer.ErrRendererInit, err)
	}
	pp, err := newPhotoPass()
	if err != nil {
		sp.destroy()
		return nil, fmt.Errorf("%w: photo shader: %w", renderer.ErrRendererInit, err)
	}

	s := &Surface{
		log:      log,
		sky:      sp,
		photo:    pp,
		resident: make(map[*scene.Texture]struct{}),
	}
	gl.GenVertexArrays(1, &s.quadVAO)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	s.SetViewport(width, height)
	return s, nil
}

// SetViewport resizes the GL viewport; call it on framebuffer resize.
func (s *Surface) SetViewport(width, height int) {
	s.width, s.height = max(width, 1), max(height, 1)
	gl.Viewport(0, 0, int32(s.width), int32(s.height))
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) DrawSky(ctx context.Context, m *sky.Model, u sky.Uniforms) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gl.BindVertexArray(s.quadVAO)
	s.sky.draw(m, u)
	gl.BindVertexArray(0)
	return nil
}

func (s *Surface) DrawPhoto(ctx context.Context, c photo.Composite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shown := make(map[*scene.Texture]struct{}, 2)
	for _, tex := range []*scene.Texture{c.Current, c.Next} {
		if tex == nil {
			continue
		}
		if err := UploadTexture(tex); err != nil {
			// Drawn black this frame; the loader already logged the asset.
			s.log.Debug("texture upload skipped", zap.String("name", tex.Name), zap.Error(err))
			continue
		}
		shown[tex] = struct{}{}
		s.resident[tex] = struct{}{}
	}
	s.evict(shown)

	gl.BindVertexArray(s.quadVAO)
	s.photo.draw(c)
	gl.BindVertexArray(0)
	return nil
}

// evict frees every resident texture not in keep. A frame that comes back
// later is uploaded again.
func (s *Surface) evict(keep map[*scene.Texture]struct{}) {
	for tex := range s.resident {
		if _, ok := keep[tex]; ok {
			continue
		}
		DeleteTexture(tex)
		delete(s.resident, tex)
	}
}

// Destroy frees all GPU resources owned by the surface.
func (s *Surface) Destroy() {
	s.evict(nil)
	s.sky.destroy()
	s.photo.destroy()
	if s.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &s.quadVAO)
		s.quadVAO = 0
	}
}

var _ renderer.Target = (*Surface)(nil)
