package viewport

import (
	"fmt"
	"sync"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/x11"
)

// X11 reads the viewport from a live X server. The connection is opened
// on first use and kept; monitor geometry is re-queried on every call.
type X11 struct {
	Display     string
	Monitor     string // RandR output name; empty selects the monitor under the pointer
	UseWorkArea bool

	mu   sync.Mutex
	conn *x11.Connection
}

// Viewport implements Source.
func (x *X11) Viewport() (geometry.Viewport, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.conn == nil {
		conn, err := x11.NewConnection(x.Display)
		if err != nil {
			return geometry.Viewport{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		x.conn = conn
	}

	mon, err := x.conn.ActiveMonitor(x.Monitor)
	if err != nil {
		return geometry.Viewport{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if x.UseWorkArea {
		mon = x.conn.ClipToWorkArea(mon)
	}
	return geometry.Viewport{Width: mon.Width, Height: mon.Height}, nil
}

// Close releases the X11 connection, if one was opened.
func (x *X11) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		x.conn.Close()
		x.conn = nil
	}
}
