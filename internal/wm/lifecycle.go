package wm

import "github.com/1broseidon/shellwm/internal/geometry"

// Focus raises a window to the top of the stack and makes it the only
// focused window. Minimized windows cannot take focus; use Restore.
func (m *Manager) Focus(id string) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	if w, ok := m.windows[id]; ok {
		m.focusLocked(w)
	}
}

func (m *Manager) focusLocked(target *Window) {
	if target.Minimized {
		return
	}
	for _, w := range m.windows {
		w.Focused = false
		w.Active = false
	}
	target.Focused = true
	target.Active = true
	target.ZIndex = m.z.Next()
	m.emit(EventFocused, target.ID)
}

// Minimize hides a window's surface and hands focus to the highest
// remaining non-minimized window, if there is one. A maximized window
// leaves the maximized state while minimized and regains it on Restore.
func (m *Manager) Minimize(id string) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	w, ok := m.windows[id]
	if !ok || w.Minimized {
		return
	}
	if w.Maximized {
		w.parked = &parkedMaximize{position: *w.OriginalPosition, size: *w.OriginalSize}
		w.Maximized = false
		w.OriginalPosition = nil
		w.OriginalSize = nil
	}
	w.Minimized = true
	w.Focused = false
	w.Active = false
	m.emit(EventMinimized, id)

	var next *Window
	for _, other := range m.windows {
		if other.Minimized {
			continue
		}
		if next == nil || other.ZIndex > next.ZIndex {
			next = other
		}
	}
	if next != nil {
		m.focusLocked(next)
	}
}

// Restore brings a minimized window back and focuses it.
func (m *Manager) Restore(id string) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	w, ok := m.windows[id]
	if !ok || !w.Minimized {
		return
	}
	m.unminimizeLocked(w)
	m.focusLocked(w)
}

func (m *Manager) unminimizeLocked(w *Window) {
	w.Minimized = false
	if w.parked != nil {
		pos, size := w.parked.position, w.parked.size
		w.OriginalPosition = &pos
		w.OriginalSize = &size
		w.Maximized = true
		w.parked = nil
	}
	m.emit(EventRestored, w.ID)
}

// Maximize toggles a window between filling the usable viewport and its
// component's default size, centered. The geometry saved on maximize is
// kept on the window for inspection but is not replayed when toggling
// back. A minimized window is restored and ends up maximized. The
// command is skipped when the viewport cannot be read.
func (m *Manager) Maximize(id string) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	w, ok := m.windows[id]
	if !ok {
		return
	}
	vp, ok := m.viewport()
	if !ok {
		return
	}

	if w.Minimized {
		m.unminimizeLocked(w)
		if w.Maximized {
			m.focusLocked(w)
			return
		}
	}

	if w.Maximized {
		size := m.policy.DefaultSize(w.Component)
		w.Position = m.policy.CenterPosition(size, vp)
		w.Size = size
		w.Maximized = false
		w.OriginalPosition = nil
		w.OriginalSize = nil
		m.emit(EventUnmaximized, id)
	} else {
		pos, size := w.Position, w.Size
		w.OriginalPosition = &pos
		w.OriginalSize = &size
		w.Position, w.Size = m.policy.MaximizedBounds(vp)
		w.Maximized = true
		m.emit(EventMaximized, id)
	}
	m.focusLocked(w)
}

// UpdateBounds applies a drag or resize. Only the non-nil fields change;
// focus and stacking are untouched. Ignored while minimized.
func (m *Manager) UpdateBounds(id string, b Bounds) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	w, ok := m.windows[id]
	if !ok || w.Minimized {
		return
	}
	if b.Position == nil && b.Size == nil {
		return
	}
	if b.Position != nil {
		w.Position = *b.Position
	}
	if b.Size != nil {
		w.Size = *b.Size
	}
	m.emit(EventBounds, id)
}

// UpdatePosition moves a window.
func (m *Manager) UpdatePosition(id string, pos geometry.Point) {
	m.UpdateBounds(id, Bounds{Position: &pos})
}

// UpdateSize resizes a window.
func (m *Manager) UpdateSize(id string, size geometry.Size) {
	m.UpdateBounds(id, Bounds{Size: &size})
}
