package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the root coordinate (x, y) lies on the monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// RootMonitor describes the whole root window as a single monitor. Used
// when RandR reports nothing (Xvfb, nested servers).
func (c *Connection) RootMonitor() (Monitor, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Monitor{}, fmt.Errorf("failed to query root geometry: %w", err)
	}
	return Monitor{Name: "root", Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// ActiveMonitor returns the named monitor, or the monitor under the
// pointer when name is empty. Falls back to the first monitor, then to
// the root window.
func (c *Connection) ActiveMonitor(name string) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		return c.RootMonitor()
	}

	if name != "" {
		for _, m := range monitors {
			if m.Name == name {
				return m, nil
			}
		}
		return Monitor{}, fmt.Errorf("monitor %q not found", name)
	}

	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		x, y := int(pointer.RootX), int(pointer.RootY)
		for _, m := range monitors {
			if m.Contains(x, y) {
				return m, nil
			}
		}
	}

	return monitors[0], nil
}

// ClipToWorkArea shrinks the monitor to the EWMH work area of the current
// desktop, excluding panels owned by the host window manager. The monitor
// is returned unchanged when no work area is advertised.
func (c *Connection) ClipToWorkArea(m Monitor) Monitor {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return m
	}

	desktopIndex := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktopIndex = int(current)
	}
	wa := workArea[desktopIndex]

	return Intersect(m, Monitor{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)})
}

// Intersect returns the overlap of a and b, keeping a's identity. If they
// don't overlap a is returned unchanged.
func Intersect(a, b Monitor) Monitor {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return a
	}

	out := a
	out.X, out.Y = x1, y1
	out.Width, out.Height = x2-x1, y2-y1
	return out
}
