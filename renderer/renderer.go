// Package renderer ties the sky back-ends together: the procedural and
// photographic SkyRenderers, the surfaces they draw onto, and the Engine
// that owns the clock, the transition state and user input.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sky-archive/math"
	"sky-archive/photo"
	"sky-archive/sky"
)

var (
	// ErrRendererInit wraps failures to bring up a graphics context. It is
	// terminal for the session.
	ErrRendererInit = errors.New("renderer: initialisation failed")
	// ErrUnknownBackend is returned for an unrecognised renderer kind.
	ErrUnknownBackend = errors.New("renderer: unknown backend")
)

// Kind names a SkyRenderer variant.
type Kind string

const (
	KindProcedural Kind = "procedural"
	KindPhoto      Kind = "photo"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindProcedural, KindPhoto:
		return k, nil
	case "":
		return KindProcedural, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Frame is the immutable per-frame state handed to a SkyRenderer.
type Frame struct {
	Time      float32 // seconds since the engine started
	DayA      int     // day shown at weight 0
	DayB      int     // day shown at weight 1
	Weight    float32 // eased transition progress
	Pointer   math.Vec2
	Intensity float32
}

// Target is a surface a frame can be drawn onto. Renderers decide what to
// draw; targets decide how.
type Target interface {
	Size() (width, height int)
	DrawSky(ctx context.Context, model *sky.Model, u sky.Uniforms) error
	DrawPhoto(ctx context.Context, c photo.Composite) error
}

// SkyRenderer is one way of turning a Frame into pixels. Tick runs once per
// frame before Render and is where asynchronous work is collected.
type SkyRenderer interface {
	Kind() Kind
	Tick(f Frame)
	Render(ctx context.Context, t Target, f Frame) error
	Close() error
}

// Settings configures every renderer kind; each uses the part it needs.
type Settings struct {
	Sky sky.Settings
	// FixedTimeOfDay pins the sun when in [0,1); negative lets it run.
	FixedTimeOfDay float32

	Assets  photo.AssetSet
	Grading photo.Grading
	Watch   bool
}

func DefaultSettings() Settings {
	return Settings{
		Sky:            sky.DefaultSettings(),
		FixedTimeOfDay: -1,
		Assets:         photo.DefaultAssetSet(),
		Grading:        photo.DefaultGrading(),
	}
}

// New builds the renderer for kind.
func New(kind Kind, s Settings, log *zap.Logger) (SkyRenderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch kind {
	case KindProcedural:
		log.Info("renderer selected", zap.String("kind", string(kind)))
		return NewProcedural(s.Sky, s.FixedTimeOfDay), nil
	case KindPhoto:
		log.Info("renderer selected", zap.String("kind", string(kind)),
			zap.String("dir", s.Assets.Dir), zap.Int("count", s.Assets.Count))
		return NewPhoto(s.Assets, s.Grading, s.Watch, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
