package photo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"sky-archive/scene"
)

// DecodeFunc reads and decodes one frame. It should give up early once ctx
// is cancelled.
type DecodeFunc func(ctx context.Context, path string) (*scene.Texture, error)

// DecodeFile is the default DecodeFunc: it reads the file and decodes any
// registered image format.
func DecodeFile(ctx context.Context, path string) (*scene.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scene.DecodeTexture(path, f)
}

type loadResult struct {
	index int
	gen   uint64
	tex   *scene.Texture
	err   error
}

type pendingLoad struct {
	gen    uint64
	cancel context.CancelFunc
}

// Loader fetches frames in the background. All methods except Close must be
// called from the frame goroutine; background loads only hand their results
// back through a channel that Poll drains.
type Loader struct {
	assets AssetSet
	log    *zap.Logger
	decode DecodeFunc

	ctx     context.Context
	cancel  context.CancelFunc
	results chan loadResult
	wg      sync.WaitGroup

	gen          uint64
	cache        map[int]*scene.Texture
	failed       map[int]error
	pending      map[int]pendingLoad
	placeholders map[int]*scene.Texture
	closeOnce    sync.Once
}

type LoaderOption func(*Loader)

// WithDecoder replaces the file decoder.
func WithDecoder(fn DecodeFunc) LoaderOption {
	return func(l *Loader) { l.decode = fn }
}

func NewLoader(assets AssetSet, log *zap.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		assets:       assets,
		log:          log.Named("photo"),
		decode:       DecodeFile,
		ctx:          ctx,
		cancel:       cancel,
		results:      make(chan loadResult, max(assets.Count, 1)),
		cache:        make(map[int]*scene.Texture),
		failed:       make(map[int]error),
		pending:      make(map[int]pendingLoad),
		placeholders: make(map[int]*scene.Texture),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Assets() AssetSet { return l.assets }

// Request starts loading index unless it is cached, in flight or known to
// be broken.
func (l *Loader) Request(index int) {
	if index < 0 || index >= l.assets.Count || l.ctx.Err() != nil {
		return
	}
	if _, ok := l.cache[index]; ok {
		return
	}
	if _, ok := l.failed[index]; ok {
		return
	}
	if _, ok := l.pending[index]; ok {
		return
	}

	l.gen++
	ctx, cancel := context.WithCancel(l.ctx)
	l.pending[index] = pendingLoad{gen: l.gen, cancel: cancel}
	path := l.assets.Path(index)

	l.wg.Add(1)
	go func(gen uint64) {
		defer l.wg.Done()
		defer cancel()
		tex, err := l.decode(ctx, path)
		select {
		case l.results <- loadResult{index: index, gen: gen, tex: tex, err: err}:
		case <-ctx.Done():
		}
	}(l.gen)
}

// Retain cancels every in-flight load whose index is not in keep. Rapid
// scrubbing calls this each frame so superseded loads stop early.
func (l *Loader) Retain(keep ...int) {
	for idx, p := range l.pending {
		wanted := false
		for _, k := range keep {
			if k == idx {
				wanted = true
				break
			}
		}
		if !wanted {
			p.cancel()
			delete(l.pending, idx)
		}
	}
}

// Poll applies finished loads and reports how many it applied.
func (l *Loader) Poll() int {
	n := 0
	for {
		select {
		case r := <-l.results:
			l.apply(r)
			n++
		default:
			return n
		}
	}
}

func (l *Loader) apply(r loadResult) {
	if p, ok := l.pending[r.index]; ok && p.gen == r.gen {
		delete(l.pending, r.index)
	}
	if r.err != nil {
		if errors.Is(r.err, context.Canceled) || l.ctx.Err() != nil {
			return
		}
		err := fmt.Errorf("%w: frame %d (%s): %v", ErrAssetLoad, r.index, l.assets.Path(r.index), r.err)
		l.failed[r.index] = err
		l.log.Warn("frame unavailable, using placeholder",
			zap.Int("index", r.index),
			zap.String("path", l.assets.Path(r.index)),
			zap.Error(r.err))
		return
	}
	l.cache[r.index] = r.tex
	l.log.Debug("frame loaded",
		zap.Int("index", r.index),
		zap.Int("width", r.tex.Width),
		zap.Int("height", r.tex.Height))
}

// Get returns the decoded frame when it is ready.
func (l *Loader) Get(index int) (*scene.Texture, bool) {
	tex, ok := l.cache[index]
	return tex, ok
}

// Err returns the load failure recorded for index, wrapping ErrAssetLoad.
func (l *Loader) Err(index int) error {
	return l.failed[index]
}

// Pending reports whether index is being loaded.
func (l *Loader) Pending(index int) bool {
	_, ok := l.pending[index]
	return ok
}

// Invalidate forgets index so the next Request reads it again.
func (l *Loader) Invalidate(index int) {
	if p, ok := l.pending[index]; ok {
		p.cancel()
		delete(l.pending, index)
	}
	delete(l.failed, index)
	if _, ok := l.cache[index]; ok {
		delete(l.cache, index)
		l.log.Info("frame changed on disk, reloading",
			zap.Int("index", index),
			zap.String("path", l.assets.Path(index)))
	}
}

// Placeholder is the stand-in for a frame that is missing or still
// loading: a soft vertical gradient whose hue identifies the frame.
func (l *Loader) Placeholder(index int) *scene.Texture {
	if tex, ok := l.placeholders[index]; ok {
		return tex
	}
	tex := PlaceholderTexture(index, l.assets.Count)
	l.placeholders[index] = tex
	return tex
}

// PlaceholderTexture builds the gradient for frame index of count.
func PlaceholderTexture(index, count int) *scene.Texture {
	const w, h = 4, 32
	hue := 220.0
	if count > 0 {
		hue = 200 + 140*float64(index)/float64(count)
	}
	top := colorful.Hcl(hue, 0.25, 0.45)
	bottom := colorful.Hcl(hue+40, 0.15, 0.15)

	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		c := top.BlendHcl(bottom, float64(y)/(h-1)).Clamped()
		r, g, b := c.RGB255()
		for x := 0; x < w; x++ {
			pix = append(pix, r, g, b, 255)
		}
	}
	return &scene.Texture{
		Name:   fmt.Sprintf("placeholder-%d", index),
		Width:  w,
		Height: h,
		Pixels: pix,
	}
}

// Close cancels every load and waits for the background goroutines.
func (l *Loader) Close() {
	l.closeOnce.Do(func() {
		l.cancel()
		l.wg.Wait()
	})
}
