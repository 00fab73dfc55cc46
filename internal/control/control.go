// Package control maps front-end input onto the Engine. The window and the
// terminal viewers both translate their key events into Actions.
package control

import (
	"fmt"
	"strings"

	"sky-archive/renderer"
	"sky-archive/timeline"
)

type Action int

const (
	None Action = iota
	NextDay
	PrevDay
	FirstDay
	LastDay
	ToggleAutoplay
	TogglePause
	ToggleHUD
	Quit
)

func (a Action) String() string {
	switch a {
	case NextDay:
		return "next"
	case PrevDay:
		return "prev"
	case FirstDay:
		return "first"
	case LastDay:
		return "last"
	case ToggleAutoplay:
		return "autoplay"
	case TogglePause:
		return "pause"
	case ToggleHUD:
		return "hud"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// ForRune maps the letter shortcuts shared by every front-end.
func ForRune(r rune) Action {
	switch r {
	case ' ':
		return ToggleAutoplay
	case 'p', 'P':
		return TogglePause
	case 'v', 'V':
		return ToggleHUD
	case 'q', 'Q':
		return Quit
	case 'n', 'l':
		return NextDay
	case 'b', 'h':
		return PrevDay
	default:
		return None
	}
}

// State is the per-viewer state that lives outside the Engine.
type State struct {
	View renderer.View
	HUD  bool
}

// Apply runs a on e. Manual navigation stops autoplay. It reports whether
// the viewer should quit.
func Apply(e *renderer.Engine, s *State, a Action) bool {
	switch a {
	case NextDay:
		s.View.Autoplay = false
		e.Next()
	case PrevDay:
		s.View.Autoplay = false
		e.Prev()
	case FirstDay:
		s.View.Autoplay = false
		e.SetDay(0)
	case LastDay:
		s.View.Autoplay = false
		e.SetDay(timeline.TotalDays - 1)
	case ToggleAutoplay:
		s.View.Autoplay = !s.View.Autoplay
	case TogglePause:
		s.View.Paused = !s.View.Paused
	case ToggleHUD:
		s.HUD = !s.HUD
	case Quit:
		return true
	}
	return false
}

// Overlay collects status lines for display.
type Overlay struct {
	lines []string
}

func (o *Overlay) AddLine(format string, args ...any) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *Overlay) Clear() {
	o.lines = o.lines[:0]
}

func (o *Overlay) Lines() []string { return o.lines }

func (o *Overlay) Text() string {
	return strings.Join(o.lines, "\n")
}

// Status fills o with the day counter, calendar and season of the engine's
// current day plus the viewer flags. fps <= 0 omits the frame rate.
func Status(o *Overlay, e *renderer.Engine, s State, fps int) {
	o.Clear()
	day := e.Day()
	o.AddLine("%s  %s  %s", timeline.DayLabel(day), e.CalendarLabel(day), e.SeasonLabel(day))

	var flags []string
	flags = append(flags, string(e.Renderer().Kind()))
	if s.View.Autoplay {
		flags = append(flags, "autoplay")
	}
	if s.View.Paused {
		flags = append(flags, "paused")
	}
	if e.State().Active {
		flags = append(flags, "transition")
	}
	if fps > 0 {
		flags = append(flags, fmt.Sprintf("%d fps", fps))
	}
	o.AddLine("%s", strings.Join(flags, " · "))
}
