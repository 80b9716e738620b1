// Package viewport provides the desktop dimensions the window engine
// reads whenever it computes geometry.
package viewport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/shellwm/internal/geometry"
)

// ErrUnavailable is returned when a source cannot report dimensions.
var ErrUnavailable = errors.New("viewport unavailable")

// Source reports the current viewport. Implementations must be safe for
// concurrent use and must not cache across calls when the underlying
// display can change size.
type Source interface {
	Viewport() (geometry.Viewport, error)
}

// Func adapts a plain function to a Source.
type Func func() (geometry.Viewport, error)

func (f Func) Viewport() (geometry.Viewport, error) { return f() }

// Static is a fixed-size viewport that can be resized at runtime.
type Static struct {
	mu sync.RWMutex
	vp geometry.Viewport
}

// NewStatic returns a Static source of the given dimensions.
func NewStatic(width, height int) *Static {
	return &Static{vp: geometry.Viewport{Width: width, Height: height}}
}

// Viewport implements Source.
func (s *Static) Viewport() (geometry.Viewport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vp.Width <= 0 || s.vp.Height <= 0 {
		return geometry.Viewport{}, fmt.Errorf("%w: static size %dx%d", ErrUnavailable, s.vp.Width, s.vp.Height)
	}
	return s.vp, nil
}

// Resize changes the reported dimensions.
func (s *Static) Resize(width, height int) {
	s.mu.Lock()
	s.vp = geometry.Viewport{Width: width, Height: height}
	s.mu.Unlock()
}

// Fallback returns primary's viewport, or fallback's when primary fails.
func Fallback(primary, fallback Source) Source {
	return Func(func() (geometry.Viewport, error) {
		vp, err := primary.Viewport()
		if err == nil {
			return vp, nil
		}
		if vp, ferr := fallback.Viewport(); ferr == nil {
			return vp, nil
		}
		return geometry.Viewport{}, err
	})
}

// Switch delegates to a source that can be replaced at runtime, e.g. when
// a config reload changes the viewport settings.
type Switch struct {
	mu  sync.RWMutex
	src Source
}

// NewSwitch returns a Switch delegating to src.
func NewSwitch(src Source) *Switch {
	return &Switch{src: src}
}

// Set replaces the delegate and returns the previous one.
func (s *Switch) Set(src Source) Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.src
	s.src = src
	return prev
}

// Viewport implements Source.
func (s *Switch) Viewport() (geometry.Viewport, error) {
	s.mu.RLock()
	src := s.src
	s.mu.RUnlock()
	if src == nil {
		return geometry.Viewport{}, ErrUnavailable
	}
	return src.Viewport()
}
