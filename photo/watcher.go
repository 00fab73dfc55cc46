package photo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce absorbs the burst of events an editor or copy produces
// for a single save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports frames whose file changed on disk. Indices arrive on
// Changes once writes to a file have been quiet for the debounce interval;
// the frame loop passes them to Loader.Invalidate.
type Watcher struct {
	assets   AssetSet
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration

	changes   chan int
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewWatcher starts watching the asset directory. The watch ends when ctx
// is cancelled or Close is called.
func NewWatcher(ctx context.Context, assets AssetSet, log *zap.Logger, debounce time.Duration) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(assets.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", assets.Dir, err)
	}

	w := &Watcher{
		assets:   assets,
		log:      log.Named("photo.watch"),
		fsw:      fsw,
		debounce: debounce,
		changes:  make(chan int, max(assets.Count, 1)),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.log.Info("watching frames", zap.String("dir", assets.Dir))
	go w.run(ctx)
	return w, nil
}

// Changes delivers the indices of modified frames.
func (w *Watcher) Changes() <-chan int { return w.changes }

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := time.NewTicker(w.debounce / 4)
	defer tick.Stop()
	dirty := make(map[int]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			idx, ok := w.assets.IndexOfFile(ev.Name)
			if !ok {
				continue
			}
			w.log.Debug("frame event", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			dirty[idx] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			for idx, at := range dirty {
				if now.Sub(at) < w.debounce {
					continue
				}
				select {
				case w.changes <- idx:
					delete(dirty, idx)
				default:
					// Reader is behind; retry on the next tick.
				}
			}
		}
	}
}

// Close stops the watch and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}
