package wm

import (
	"maps"

	"github.com/1broseidon/shellwm/internal/geometry"
)

// State is the lifecycle state derived from a window's flags.
type State int

const (
	StateNormal State = iota
	StateMaximized
	StateMinimized
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMaximized:
		return "maximized"
	case StateMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// Window is one tracked shell window. Values handed out by the Manager
// are copies; mutating them has no effect on engine state.
type Window struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`

	Visible   bool `json:"visible"`
	Active    bool `json:"active"`
	Focused   bool `json:"focused"`
	Minimized bool `json:"minimized"`
	Maximized bool `json:"maximized"`

	Position geometry.Point `json:"position"`
	Size     geometry.Size  `json:"size"`

	// Geometry captured just before maximizing. Set only while Maximized.
	OriginalPosition *geometry.Point `json:"original_position,omitempty"`
	OriginalSize     *geometry.Size  `json:"original_size,omitempty"`

	ZIndex int `json:"z_index"`

	// A maximized window that gets minimized parks its maximize state here
	// so Restore can bring it back maximized.
	parked *parkedMaximize
}

type parkedMaximize struct {
	position geometry.Point
	size     geometry.Size
}

// State derives the lifecycle state from the window's flags.
func (w *Window) State() State {
	switch {
	case w.Minimized:
		return StateMinimized
	case w.Maximized:
		return StateMaximized
	default:
		return StateNormal
	}
}

// Rendered reports whether the shell should draw the window's surface.
func (w *Window) Rendered() bool {
	return w.Visible && !w.Minimized
}

func (w *Window) clone() Window {
	out := *w
	out.Props = maps.Clone(w.Props)
	if w.OriginalPosition != nil {
		p := *w.OriginalPosition
		out.OriginalPosition = &p
	}
	if w.OriginalSize != nil {
		s := *w.OriginalSize
		out.OriginalSize = &s
	}
	if w.parked != nil {
		p := *w.parked
		out.parked = &p
	}
	return out
}

// OpenOptions overrides the default geometry of a newly opened window.
type OpenOptions struct {
	Size     *geometry.Size
	Position *geometry.Point
	// Center takes precedence over Position.
	Center bool
}

// Bounds is a partial geometry update; nil fields are left unchanged.
type Bounds struct {
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
}
