package wm

import (
	"errors"
	"fmt"
)

// CheckInvariants verifies the registry and returns every violation
// joined into one error. A nil result means the engine is consistent.
// Violations indicate a bug in the transition logic, never bad input.
func (m *Manager) CheckInvariants() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error

	if len(m.order) != len(m.windows) {
		errs = append(errs, fmt.Errorf("registry order has %d entries for %d windows", len(m.order), len(m.windows)))
	}
	seen := make(map[string]struct{}, len(m.order))
	for _, id := range m.order {
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("duplicate window id %q", id))
		}
		seen[id] = struct{}{}
		if _, ok := m.windows[id]; !ok {
			errs = append(errs, fmt.Errorf("window %q listed but not registered", id))
		}
	}

	var focused []*Window
	var top *Window
	zSeen := make(map[int]string, len(m.windows))
	for _, id := range sortedKeys(m.windows) {
		w := m.windows[id]
		if w.ID != id {
			errs = append(errs, fmt.Errorf("window registered as %q reports id %q", id, w.ID))
		}
		if w.Focused {
			focused = append(focused, w)
		}
		if w.Active != w.Focused {
			errs = append(errs, fmt.Errorf("window %q active=%v but focused=%v", id, w.Active, w.Focused))
		}
		if w.Minimized && w.Maximized {
			errs = append(errs, fmt.Errorf("window %q is both minimized and maximized", id))
		}
		hasSnapshot := w.OriginalPosition != nil || w.OriginalSize != nil
		fullSnapshot := w.OriginalPosition != nil && w.OriginalSize != nil
		if w.Maximized && !fullSnapshot {
			errs = append(errs, fmt.Errorf("window %q is maximized without original bounds", id))
		}
		if !w.Maximized && hasSnapshot {
			errs = append(errs, fmt.Errorf("window %q keeps original bounds while not maximized", id))
		}
		if w.ZIndex != 0 {
			if other, dup := zSeen[w.ZIndex]; dup {
				errs = append(errs, fmt.Errorf("windows %q and %q share z-index %d", other, id, w.ZIndex))
			}
			zSeen[w.ZIndex] = id
		}
		if w.Rendered() && (top == nil || w.ZIndex > top.ZIndex) {
			top = w
		}
	}

	if len(focused) > 1 {
		ids := make([]string, len(focused))
		for i, w := range focused {
			ids[i] = w.ID
		}
		errs = append(errs, fmt.Errorf("%d windows focused: %v", len(focused), ids))
	}
	if len(focused) == 1 {
		f := focused[0]
		if f.Minimized {
			errs = append(errs, fmt.Errorf("focused window %q is minimized", f.ID))
		} else if top != nil && top != f {
			errs = append(errs, fmt.Errorf("focused window %q (z %d) is below %q (z %d)", f.ID, f.ZIndex, top.ID, top.ZIndex))
		}
	}

	return errors.Join(errs...)
}
