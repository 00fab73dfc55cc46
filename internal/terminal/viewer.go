package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"sky-archive/internal/control"
	"sky-archive/renderer"
)

// statusRows are kept below the picture for the status overlay.
const statusRows = 2

type ViewerOptions struct {
	FrameInterval time.Duration
	Workers       int
	Autoplay      bool
}

func DefaultViewerOptions() ViewerOptions {
	return ViewerOptions{FrameInterval: 66 * time.Millisecond}
}

// Viewer runs the interactive terminal preview of an Engine.
type Viewer struct {
	screen  tcell.Screen
	engine  *renderer.Engine
	surface *Surface
	log     *zap.Logger
	opt     ViewerOptions

	state   control.State
	overlay control.Overlay
	mouse   bool // primary button held
}

// NewViewer takes an initialised screen. The caller still owns it and
// must Fini it after Run returns.
func NewViewer(screen tcell.Screen, e *renderer.Engine, opt ViewerOptions, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.FrameInterval <= 0 {
		opt.FrameInterval = DefaultViewerOptions().FrameInterval
	}
	screen.EnableMouse()
	return &Viewer{
		screen:  screen,
		engine:  e,
		surface: NewSurface(screen, statusRows, opt.Workers),
		log:     log,
		opt:     opt,
		state:   control.State{View: renderer.View{Autoplay: opt.Autoplay}, HUD: true},
	}
}

func (v *Viewer) State() control.State { return v.state }

// Run drives the frame loop until the user quits or ctx ends. The event
// goroutine ends once the screen is finalised.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(v.opt.FrameInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || v.Handle(ev) {
				return nil
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := v.Step(ctx, dt); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
		}
	}
}

// Handle applies one input event and reports whether to quit.
func (v *Viewer) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a := keyAction(ev)
		if a != control.None {
			v.log.Debug("key", zap.Stringer("action", a))
		}
		return control.Apply(v.engine, &v.state, a)

	case *tcell.EventMouse:
		x, y := ev.Position()
		w, h := v.surface.Size()
		v.engine.SetPointer((float32(x)+0.5)/float32(w), 1-(float32(y*2)+1)/float32(h))
		down := ev.Buttons()&tcell.Button1 != 0
		switch {
		case down && !v.mouse:
			v.engine.PointerDown()
		case !down && v.mouse:
			v.engine.PointerUp()
		}
		v.mouse = down

	case *tcell.EventResize:
		v.screen.Sync()
		v.surface.Sync()
	}
	return false
}

func keyAction(ev *tcell.EventKey) control.Action {
	switch ev.Key() {
	case tcell.KeyRight, tcell.KeyDown:
		return control.NextDay
	case tcell.KeyLeft, tcell.KeyUp:
		return control.PrevDay
	case tcell.KeyHome:
		return control.FirstDay
	case tcell.KeyEnd:
		return control.LastDay
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return control.Quit
	case tcell.KeyRune:
		return control.ForRune(ev.Rune())
	}
	return control.None
}

// Step advances the engine by dt seconds and draws one frame.
func (v *Viewer) Step(ctx context.Context, dt float64) error {
	v.engine.Tick(dt, v.state.View)
	if err := v.engine.RenderFrame(ctx, v.surface); err != nil {
		return err
	}
	v.drawStatus()
	v.screen.Show()
	return nil
}

func (v *Viewer) drawStatus() {
	cols, rows := v.screen.Size()
	control.Status(&v.overlay, v.engine, v.state, 0)
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for i := 0; i < statusRows; i++ {
		line := ""
		if i < len(v.overlay.Lines()) && (i == 0 || v.state.HUD) {
			line = v.overlay.Lines()[i]
		}
		drawText(v.screen, rows-statusRows+i, cols, line, style)
	}
}

// drawText fills row with text, padding with spaces.
func drawText(screen tcell.Screen, row, cols int, text string, style tcell.Style) {
	runes := []rune(text)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		screen.SetContent(x, row, r, nil, style)
	}
}
