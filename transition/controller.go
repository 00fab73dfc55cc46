// Package transition sequences which day is visible and how two days blend
// while the archive moves between them.
package transition

import (
	"fmt"
	"time"

	"sky-archive/timeline"
)

// Policy decides what a day request does while a transition is running.
type Policy int

const (
	// PolicyRetarget keeps the current progress and swaps the destination.
	// Requesting the origin day reverses the running transition.
	PolicyRetarget Policy = iota
	// PolicyIgnore drops requests until the running transition settles.
	PolicyIgnore
	// PolicyRestart starts a fresh transition from whichever day currently
	// dominates the blend.
	PolicyRestart
)

func (p Policy) String() string {
	switch p {
	case PolicyRetarget:
		return "retarget"
	case PolicyIgnore:
		return "ignore"
	case PolicyRestart:
		return "restart"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy resolves a configured policy name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "retarget":
		return PolicyRetarget, nil
	case "ignore":
		return PolicyIgnore, nil
	case "restart":
		return PolicyRestart, nil
	default:
		return 0, fmt.Errorf("unknown transition policy %q", name)
	}
}

// Config parameterises a Controller.
type Config struct {
	Duration time.Duration
	Easing   Easing
	Policy   Policy
}

// DefaultConfig is a one second smoothstep cross-fade that retargets.
func DefaultConfig() Config {
	return Config{
		Duration: time.Second,
		Easing:   Smoothstep,
		Policy:   PolicyRetarget,
	}
}

// State is a snapshot of the controller. When Active is false the
// controller is Idle on To and From equals To.
type State struct {
	From     int
	To       int
	Progress float32 // eased
	Active   bool
}

// Controller is the day transition state machine. It is driven from the
// frame loop and is not safe for concurrent use.
type Controller struct {
	state State
	opt   Config

	linear   float32
	onSettle func(day int)
}

// New returns a controller idle on day.
func New(day int, cfg Config) *Controller {
	if cfg.Easing == nil {
		cfg.Easing = Smoothstep
	}
	if cfg.Duration < 0 {
		cfg.Duration = 0
	}
	d := timeline.Clamp(day)
	return &Controller{
		state: State{From: d, To: d},
		opt:   cfg,
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.state
}

// Settled reports whether the controller is Idle.
func (c *Controller) Settled() bool {
	return !c.state.Active
}

// Target is the day the controller is heading to (or resting on).
func (c *Controller) Target() int {
	return c.state.To
}

// Output returns the pair of days to display and the blend weight of the
// second. While Idle it is (day, day, 0).
func (c *Controller) Output() (a, b int, w float32) {
	if !c.state.Active {
		return c.state.To, c.state.To, 0
	}
	return c.state.From, c.state.To, c.state.Progress
}

// RequestDay asks the controller to show day. Out-of-range days are clamped.
// It reports whether the request changed the state.
func (c *Controller) RequestDay(day int) bool {
	return c.RequestDayThen(day, nil)
}

// RequestDayThen is RequestDay with a completion callback. fn runs once, from
// Tick, when the controller settles on day. If the transition is superseded
// before then, fn is discarded and never runs. A request for the day the
// controller already rests on calls fn immediately.
func (c *Controller) RequestDayThen(day int, fn func(day int)) bool {
	d := timeline.Clamp(day)

	if !c.state.Active {
		if d == c.state.To {
			if fn != nil {
				fn(d)
			}
			return false
		}
		c.start(c.state.To, d, fn)
		return true
	}

	switch c.opt.Policy {
	case PolicyIgnore:
		return false
	case PolicyRestart:
		origin := c.state.From
		if c.state.Progress >= 0.5 {
			origin = c.state.To
		}
		if origin == d {
			c.settle(d, fn)
			return true
		}
		c.start(origin, d, fn)
		return true
	default:
		switch d {
		case c.state.To:
			if fn != nil {
				prev := c.onSettle
				c.onSettle = func(day int) {
					if prev != nil {
						prev(day)
					}
					fn(day)
				}
			}
			return false
		case c.state.From:
			c.state.From, c.state.To = c.state.To, c.state.From
			c.linear = 1 - c.linear
		default:
			c.state.To = d
		}
		c.onSettle = fn
		c.state.Progress = c.opt.Easing(c.linear)
		return true
	}
}

// Tick advances a running transition by dt seconds. Non-finite or negative
// dt is ignored.
func (c *Controller) Tick(dt float32) {
	if !c.state.Active || dt != dt || dt <= 0 || dt > 1e9 {
		return
	}
	dur := float32(c.opt.Duration.Seconds())
	if dur <= 0 {
		c.linear = 1
	} else {
		c.linear += dt / dur
	}
	if c.linear >= 1 {
		c.settle(c.state.To, c.onSettle)
		return
	}
	c.state.Progress = c.opt.Easing(c.linear)
}

// Jump settles on day immediately, discarding any running transition.
func (c *Controller) Jump(day int) {
	c.settle(timeline.Clamp(day), nil)
}

func (c *Controller) start(from, to int, fn func(day int)) {
	c.state = State{From: from, To: to, Progress: 0, Active: true}
	c.linear = 0
	c.onSettle = fn
}

func (c *Controller) settle(day int, fn func(day int)) {
	c.state = State{From: day, To: day}
	c.linear = 0
	c.onSettle = nil
	if fn != nil {
		fn(day)
	}
}
