package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sky-archive/internal/terminal"
	"sky-archive/renderer"
)

var termFPS int

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Preview the sky in a truecolor terminal",
	Long: `Renders the sky on the CPU into half-block terminal cells.

Keys are the same as for view, plus h / l for previous / next day.`,
	RunE: runTerm,
}

func init() {
	termCmd.Flags().IntVar(&termFPS, "fps", 15, "Frames per second")
}

func runTerm(cmd *cobra.Command, args []string) error {
	// The screen owns the tty; log only when asked to.
	log := logger
	if !verbose {
		log = zap.NewNop()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrRendererInit, err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrRendererInit, err)
	}
	defer screen.Fini()

	r, err := newRenderer(cfg.RendererSettings(), log)
	if err != nil {
		return err
	}
	e := renderer.NewEngine(r, cfg.EngineOptions(), log)
	defer e.Close()

	opt := terminal.DefaultViewerOptions()
	if termFPS > 0 {
		opt.FrameInterval = time.Second / time.Duration(termFPS)
	}
	opt.Workers = cfg.Renderer.Workers
	opt.Autoplay = cfg.Autoplay.Enabled

	ctx, stop := signalContext()
	defer stop()
	return terminal.NewViewer(screen, e, opt, log).Run(ctx)
}
