package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sky-archive/core"
	"sky-archive/internal/control"
	"sky-archive/internal/opengl"
	"sky-archive/renderer"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the sky in an OpenGL window",
	Long: `Opens a window and renders the sky on the GPU.

Keys:
  Right / Down   next day        Left / Up   previous day
  Home / End     first / last    Space       toggle autoplay
  P              pause clock     V           toggle status in title
  Q / Esc        quit
Drag with the left button to stir the clouds.`,
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	wc := core.DefaultWindowConfig()
	wc.Width = cfg.Renderer.Width
	wc.Height = cfg.Renderer.Height
	wc.Fullscreen = cfg.Renderer.Fullscreen
	wc.VSync = cfg.Renderer.VSync

	window, err := core.NewWindow(wc)
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrRendererInit, err)
	}
	defer window.Destroy()

	fw, fh := window.GetFramebufferSize()
	surface, err := opengl.NewSurface(fw, fh, logger)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	r, err := newRenderer(cfg.RendererSettings(), logger)
	if err != nil {
		return err
	}
	e := renderer.NewEngine(r, cfg.EngineOptions(), logger)
	defer e.Close()

	state := control.State{View: renderer.View{Autoplay: cfg.Autoplay.Enabled}, HUD: true}
	window.SetKeyCallback(func(key int) {
		if control.Apply(e, &state, windowAction(key)) {
			window.SetShouldClose(true)
		}
	})
	window.SetCursorCallback(func(nx, ny float64) {
		e.SetPointer(float32(nx), float32(ny))
	})
	window.SetMouseButtonCallback(func(pressed bool) {
		if pressed {
			e.PointerDown()
		} else {
			e.PointerUp()
		}
	})

	ctx, stop := signalContext()
	defer stop()

	var overlay control.Overlay
	title := wc.Title
	last := window.Time()
	fpsStart, frames, fps := last, 0, 0

	for !window.ShouldClose() && ctx.Err() == nil {
		window.PollEvents()

		now := window.Time()
		dt := now - last
		last = now

		if w, h := window.GetFramebufferSize(); w > 0 && h > 0 {
			if sw, sh := surface.Size(); w != sw || h != sh {
				surface.SetViewport(w, h)
			}
		}

		e.Tick(dt, state.View)
		if err := e.RenderFrame(ctx, surface); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		window.SwapBuffers()

		frames++
		if now-fpsStart >= 1 {
			fps = frames
			frames = 0
			fpsStart = now
		}

		next := wc.Title
		if state.HUD {
			control.Status(&overlay, e, state, fps)
			next = wc.Title + " | " + strings.Join(overlay.Lines(), " | ")
		}
		if next != title {
			window.SetTitle(next)
			title = next
		}
	}

	logger.Info("window closed", zap.Int("day", e.Day()))
	return nil
}

func windowAction(key int) control.Action {
	switch key {
	case core.KeyRight, core.KeyDown:
		return control.NextDay
	case core.KeyLeft, core.KeyUp:
		return control.PrevDay
	case core.KeyHome:
		return control.FirstDay
	case core.KeyEnd:
		return control.LastDay
	case core.KeySpace:
		return control.ToggleAutoplay
	case core.KeyP:
		return control.TogglePause
	case core.KeyV:
		return control.ToggleHUD
	case core.KeyQ, core.KeyEscape:
		return control.Quit
	}
	return control.None
}
