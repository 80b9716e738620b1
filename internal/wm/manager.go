package wm

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/viewport"
)

// Options configures a Manager.
type Options struct {
	Policy   geometry.Policy
	Viewport viewport.Source
	// BaseZIndex overrides the first stacking key. Zero means BaseZIndex.
	BaseZIndex int
}

// Manager owns the window registry and applies lifecycle commands to it.
// It is safe for concurrent use; all commands are serialized.
type Manager struct {
	mu      sync.Mutex
	windows map[string]*Window
	order   []string // insertion order, for listing only
	z       zAllocator
	policy  geometry.Policy
	vp      viewport.Source
	pending []Event

	dispatchMu sync.Mutex
	subMu      sync.Mutex
	subs       map[int]func(Event)
	nextSub    int
}

// NewManager creates an empty registry.
func NewManager(opts Options) *Manager {
	base := opts.BaseZIndex
	if base == 0 {
		base = BaseZIndex
	}
	return &Manager{
		windows: make(map[string]*Window),
		z:       newZAllocator(base),
		policy:  opts.Policy,
		vp:      opts.Viewport,
		subs:    make(map[int]func(Event)),
	}
}

// SetPolicy replaces the geometry policy used by later commands.
func (m *Manager) SetPolicy(p geometry.Policy) {
	m.mu.Lock()
	m.policy = p
	m.mu.Unlock()
}

// Policy returns the current geometry policy.
func (m *Manager) Policy() geometry.Policy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy
}

// Open creates a window, or focuses it if the id is already open. An
// existing window keeps its title, component and geometry. The returned
// value is a copy of the window after the command.
func (m *Manager) Open(id, title, component string, props map[string]any, opts *OpenOptions) Window {
	m.lockCommand()
	defer m.unlockAndDispatch()

	if w, ok := m.windows[id]; ok {
		m.focusLocked(w)
		return w.clone()
	}

	if opts == nil {
		opts = &OpenOptions{}
	}

	size := m.policy.DefaultSize(component)
	if opts.Size != nil {
		size = *opts.Size
	}

	var pos geometry.Point
	centered := false
	if opts.Center {
		if vp, ok := m.viewport(); ok {
			pos = m.policy.CenterPosition(size, vp)
			centered = true
		}
	}
	if !centered {
		if opts.Position != nil {
			pos = *opts.Position
		} else {
			pos = geometry.CascadePosition(len(m.windows))
		}
	}

	w := &Window{
		ID:        id,
		Title:     title,
		Component: component,
		Props:     maps.Clone(props),
		Visible:   true,
		Position:  pos,
		Size:      size,
	}
	if w.Props == nil {
		w.Props = map[string]any{}
	}
	m.windows[id] = w
	m.order = append(m.order, id)
	m.emit(EventOpened, id)

	m.focusLocked(w)
	return w.clone()
}

// Close removes a window. Focus does not move to another window.
func (m *Manager) Close(id string) {
	m.lockCommand()
	defer m.unlockAndDispatch()

	if _, ok := m.windows[id]; !ok {
		return
	}
	delete(m.windows, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	m.emit(EventClosed, id)
}

// Find returns a copy of the window with the given id.
func (m *Manager) Find(id string) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[id]
	if !ok {
		return Window{}, false
	}
	return w.clone(), true
}

// Windows returns a snapshot of every window in insertion order.
func (m *Manager) Windows() []Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.windows[id].clone())
	}
	return out
}

// Len returns the number of open windows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Stack returns window ids ordered topmost first.
func (m *Manager) Stack() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := slices.Clone(m.order)
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(m.windows[b].ZIndex, m.windows[a].ZIndex)
	})
	return ids
}

// Focused returns the focused window, if any.
func (m *Manager) Focused() (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if w := m.windows[id]; w.Focused {
			return w.clone(), true
		}
	}
	return Window{}, false
}

// NextZIndex returns the stacking key the next focus will receive.
func (m *Manager) NextZIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.z.Peek()
}

// viewport reads the current viewport. It is never cached.
func (m *Manager) viewport() (geometry.Viewport, bool) {
	if m.vp == nil {
		return geometry.Viewport{}, false
	}
	vp, err := m.vp.Viewport()
	if err != nil {
		return geometry.Viewport{}, false
	}
	return vp, true
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
