// Package terminal previews the sky in a truecolor terminal. Each cell
// shows two pixels stacked with the upper half block.
package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"sky-archive/photo"
	"sky-archive/renderer"
	"sky-archive/sky"
)

const halfBlock = '▀'

// Surface is a renderer.Target over a tcell screen. Frames are shaded on a
// software canvas at twice the row count and then copied into cells.
// The bottom reserved rows are left to the caller.
type Surface struct {
	screen   tcell.Screen
	canvas   *renderer.Canvas
	reserved int
}

func NewSurface(screen tcell.Screen, reserved, workers int) *Surface {
	s := &Surface{
		screen:   screen,
		canvas:   renderer.NewCanvas(1, 1, workers),
		reserved: max(reserved, 0),
	}
	s.Sync()
	return s
}

// Sync matches the canvas to the screen size; call it on resize.
func (s *Surface) Sync() {
	cols, rows := s.screen.Size()
	s.canvas.Resize(max(cols, 1), max(rows-s.reserved, 1)*2)
}

// Size is the pixel size, not the cell size.
func (s *Surface) Size() (int, int) { return s.canvas.Size() }

func (s *Surface) DrawSky(ctx context.Context, m *sky.Model, u sky.Uniforms) error {
	if err := s.canvas.DrawSky(ctx, m, u); err != nil {
		return err
	}
	s.blit()
	return nil
}

func (s *Surface) DrawPhoto(ctx context.Context, c photo.Composite) error {
	if err := s.canvas.DrawPhoto(ctx, c); err != nil {
		return err
	}
	s.blit()
	return nil
}

func (s *Surface) blit() {
	img := s.canvas.Image()
	w, h := s.canvas.Size()
	for y := 0; y+1 < h; y += 2 {
		for x := 0; x < w; x++ {
			top := img.RGBAAt(x, y)
			bottom := img.RGBAAt(x, y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(x, y/2, halfBlock, nil, style)
		}
	}
}

var _ renderer.Target = (*Surface)(nil)
