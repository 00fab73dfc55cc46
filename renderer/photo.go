package renderer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sky-archive/photo"
	"sky-archive/scene"
	"sky-archive/timeline"
)

// Photo cross-fades the captured frames of the current and next day.
type Photo struct {
	assets  photo.AssetSet
	grading photo.Grading
	loader  *photo.Loader
	watcher *photo.Watcher
	log     *zap.Logger

	// Last frames shown in each slot, reused while a replacement loads.
	shown [2]*scene.Texture
}

// NewPhoto builds the photo renderer. With watch set, frames rewritten on
// disk are reloaded.
func NewPhoto(assets photo.AssetSet, grading photo.Grading, watch bool, log *zap.Logger, opts ...photo.LoaderOption) (*Photo, error) {
	if err := assets.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Photo{
		assets:  assets,
		grading: grading,
		loader:  photo.NewLoader(assets, log, opts...),
		log:     log,
	}
	if watch {
		w, err := photo.NewWatcher(context.Background(), assets, log, 0)
		if err != nil {
			// Reload is a convenience; rendering works without it.
			log.Warn("frame watcher unavailable", zap.Error(err))
		} else {
			p.watcher = w
		}
	}
	return p, nil
}

func (p *Photo) Kind() Kind             { return KindPhoto }
func (p *Photo) Loader() *photo.Loader  { return p.loader }
func (p *Photo) Assets() photo.AssetSet { return p.assets }

// Tick collects finished loads and file changes, then makes sure the two
// visible frames and the one after are requested. Loads for anything else
// are cancelled, so fast scrubbing never piles up work.
func (p *Photo) Tick(f Frame) {
	if p.watcher != nil {
	drain:
		for {
			select {
			case idx := <-p.watcher.Changes():
				p.loader.Invalidate(idx)
			default:
				break drain
			}
		}
	}
	p.loader.Poll()

	a := p.assets.Index(f.DayA)
	b := p.assets.Index(f.DayB)
	ahead := p.assets.Index(timeline.Wrap(f.DayB + 1))
	p.loader.Request(a)
	p.loader.Request(b)
	p.loader.Request(ahead)
	p.loader.Retain(a, b, ahead)
}

// texture picks what to show in slot for frame index: the frame itself
// once loaded, a placeholder if it failed, otherwise whatever the slot
// showed last.
func (p *Photo) texture(slot, index int) *scene.Texture {
	if tex, ok := p.loader.Get(index); ok {
		p.shown[slot] = tex
		return tex
	}
	if p.loader.Err(index) != nil || p.shown[slot] == nil {
		tex := p.loader.Placeholder(index)
		p.shown[slot] = tex
		return tex
	}
	return p.shown[slot]
}

// Composite resolves f into the two textures and blend weight to draw.
func (p *Photo) Composite(f Frame) photo.Composite {
	cur := p.texture(0, p.assets.Index(f.DayA))
	next := p.texture(1, p.assets.Index(f.DayB))
	day := f.DayA
	if f.Weight >= 0.5 {
		day = f.DayB
	}
	return photo.Composite{
		Current:   cur,
		Next:      next,
		Weight:    f.Weight,
		DayFactor: timeline.SeasonFactor(day),
		Grading:   p.grading,
	}
}

// WaitReady ticks until both frames of f are loaded or have failed. It is
// for offline rendering; interactive front-ends draw whatever is ready.
func (p *Photo) WaitReady(ctx context.Context, f Frame) error {
	a, b := p.assets.Index(f.DayA), p.assets.Index(f.DayB)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		p.Tick(f)
		if !p.loader.Pending(a) && !p.loader.Pending(b) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Photo) Render(ctx context.Context, t Target, f Frame) error {
	return t.DrawPhoto(ctx, p.Composite(f))
}

func (p *Photo) Close() error {
	p.loader.Close()
	if p.watcher != nil {
		if err := p.watcher.Close(); err != nil {
			return fmt.Errorf("close watcher: %w", err)
		}
	}
	return nil
}
