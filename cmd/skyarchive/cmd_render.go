package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sky-archive/math"
	"sky-archive/renderer"
	"sky-archive/timeline"
)

var (
	renderDay    int
	renderTOD    float32
	renderClock  float32
	renderOut    string
	renderAll    bool
	renderWidth  int
	renderHeight int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one day, or every day, to PNG",
	Long: `Renders the sky of a day on the CPU and writes it as PNG.

With --all every day of the year is rendered in parallel and --out names a
directory that receives day_001.png … day_364.png.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderDay, "day", "d", 0, "Day index, 0-363")
	renderCmd.Flags().Float32VarP(&renderTOD, "time", "t", 0.5, "Time of day in [0,1); negative follows --clock")
	renderCmd.Flags().Float32Var(&renderClock, "clock", 0, "Seconds since start, drives cloud drift")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "sky.png", "Output file, or directory with --all")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every day")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Width in pixels (default from config)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "Height in pixels (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s := cfg.RendererSettings()
	s.FixedTimeOfDay = renderTOD
	s.Watch = false
	r, err := newRenderer(s, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	w, h := renderWidth, renderHeight
	if w <= 0 {
		w = cfg.Renderer.Width
	}
	if h <= 0 {
		h = cfg.Renderer.Height
	}

	days := []int{timeline.Clamp(renderDay)}
	if renderAll {
		days = make([]int, timeline.TotalDays)
		for i := range days {
			days[i] = i
		}
		if err := os.MkdirAll(renderOut, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	job := renderJob{r: r, width: w, height: h, clock: renderClock, out: renderOut, all: renderAll}
	if err := job.run(ctx, days); err != nil {
		return err
	}
	logger.Info("render complete", zap.Int("days", len(days)), zap.String("out", renderOut))
	return nil
}

// renderJob renders a batch of days. Frame state is resolved on the calling
// goroutine; only the pixel shading runs in parallel.
type renderJob struct {
	r             renderer.SkyRenderer
	width, height int
	clock         float32
	out           string
	all           bool
}

func (j renderJob) path(day int) string {
	if !j.all {
		return j.out
	}
	return filepath.Join(j.out, fmt.Sprintf("day_%03d.png", day+1))
}

func (j renderJob) run(ctx context.Context, days []int) error {
	workers := 0 // one band per CPU for a single image
	if len(days) > 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, day := range days {
		draw, err := j.prepare(gctx, day)
		if err != nil {
			_ = g.Wait()
			return err
		}
		path := j.path(day)
		g.Go(func() error {
			c := renderer.NewCanvas(j.width, j.height, workers)
			if err := draw(gctx, c); err != nil {
				return fmt.Errorf("day %d: %w", day, err)
			}
			return writePNG(path, c)
		})
	}
	return g.Wait()
}

func (j renderJob) prepare(ctx context.Context, day int) (func(context.Context, *renderer.Canvas) error, error) {
	f := renderer.Frame{
		Time:      j.clock,
		DayA:      day,
		DayB:      day,
		Pointer:   math.Vec2{X: 0.5, Y: 0.5},
		Intensity: 1,
	}
	switch r := j.r.(type) {
	case *renderer.Procedural:
		m, u := r.Model(), r.Uniforms(f, j.width, j.height)
		return func(ctx context.Context, c *renderer.Canvas) error {
			return c.DrawSky(ctx, m, u)
		}, nil
	case *renderer.Photo:
		if err := r.WaitReady(ctx, f); err != nil {
			return nil, err
		}
		comp := r.Composite(f)
		return func(ctx context.Context, c *renderer.Canvas) error {
			return c.DrawPhoto(ctx, comp)
		}, nil
	default:
		return func(ctx context.Context, c *renderer.Canvas) error {
			return r.Render(ctx, c, f)
		}, nil
	}
}

func writePNG(path string, c *renderer.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
