package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sky-archive/math"
	"sky-archive/photo"
	"sky-archive/renderer"
	"sky-archive/scene"
	"sky-archive/sky"
	"sky-archive/timeline"
)

var (
	domeDay      int
	domeOut      string
	domeRadius   float32
	domeSegments int
	domeRings    int
)

var exportDomeCmd = &cobra.Command{
	Use:   "export-dome",
	Short: "Export a textured sky dome as binary glTF",
	Long: `Writes an inward-facing sphere wrapped in the sky of one day. With the
photo backend the day's captured frame is used; otherwise the procedural sky
is rendered at noon.`,
	RunE: runExportDome,
}

func init() {
	exportDomeCmd.Flags().IntVarP(&domeDay, "day", "d", 0, "Day index, 0-363")
	exportDomeCmd.Flags().StringVarP(&domeOut, "out", "o", "dome.glb", "Output .glb file")
	exportDomeCmd.Flags().Float32Var(&domeRadius, "radius", 10, "Dome radius")
	exportDomeCmd.Flags().IntVar(&domeSegments, "segments", 64, "Segments around the horizon")
	exportDomeCmd.Flags().IntVar(&domeRings, "rings", 64, "Rings from zenith to nadir")
}

func runExportDome(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	day := timeline.Clamp(domeDay)
	kind, err := renderer.ParseKind(cfg.Renderer.Backend)
	if err != nil {
		return err
	}

	var tex *scene.Texture
	if kind == renderer.KindPhoto {
		tex = domePhoto(ctx, cfg.RendererSettings().Assets, day)
	} else {
		tex, err = domeSky(ctx, cfg.RendererSettings().Sky, day)
		if err != nil {
			return err
		}
	}

	mesh := scene.CreateSkyDome(domeRadius, domeSegments, domeRings)
	mesh.Texture = tex
	if err := scene.ExportDome(domeOut, mesh); err != nil {
		return err
	}
	logger.Info("dome exported",
		zap.Int("day", day),
		zap.String("texture", tex.Name),
		zap.String("out", domeOut))
	return nil
}

// domePhoto loads the frame of day, falling back to its placeholder.
func domePhoto(ctx context.Context, assets photo.AssetSet, day int) *scene.Texture {
	idx := assets.Index(day)
	tex, err := photo.DecodeFile(ctx, assets.Path(idx))
	if err != nil {
		logger.Warn("frame unavailable, using placeholder",
			zap.Int("index", idx), zap.String("path", assets.Path(idx)), zap.Error(err))
		return photo.PlaceholderTexture(idx, assets.Count)
	}
	return tex
}

// domeSky renders the procedural sky of day at noon into a 2:1 texture.
func domeSky(ctx context.Context, s sky.Settings, day int) (*scene.Texture, error) {
	p := renderer.NewProcedural(s, 0.5)
	c := renderer.NewCanvas(1024, 512, 0)
	f := renderer.Frame{DayA: day, DayB: day, Pointer: math.Vec2{X: 0.5, Y: 0.5}, Intensity: 1}
	if err := p.Render(ctx, c, f); err != nil {
		return nil, fmt.Errorf("render dome texture: %w", err)
	}
	tex := scene.FromRGBA(fmt.Sprintf("sky_day_%03d", day+1), c.Image())
	tex.Wrap = scene.WrapRepeat
	return tex, nil
}
