package wm

// EventKind identifies what a command changed.
type EventKind string

const (
	EventOpened      EventKind = "opened"
	EventClosed      EventKind = "closed"
	EventFocused     EventKind = "focused"
	EventMinimized   EventKind = "minimized"
	EventRestored    EventKind = "restored"
	EventMaximized   EventKind = "maximized"
	EventUnmaximized EventKind = "unmaximized"
	EventBounds      EventKind = "bounds"
)

// Event is delivered to subscribers after a command changes state.
type Event struct {
	Kind     EventKind `json:"kind"`
	WindowID string    `json:"window_id"`
}

// Subscribe registers fn to receive every Event, in the order commands
// were applied. fn runs after the state lock is released so it may read
// from the Manager, but it must not issue commands: the next command waits
// until delivery finishes. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) emit(kind EventKind, id string) {
	m.pending = append(m.pending, Event{Kind: kind, WindowID: id})
}

// lockCommand serializes a command. dispatchMu is always taken before mu,
// by commands here and by subscribers reading state during delivery, so
// the two never wait on each other in opposite order.
func (m *Manager) lockCommand() {
	m.dispatchMu.Lock()
	m.mu.Lock()
}

// unlockAndDispatch releases the state lock, delivers the events queued by
// the command, then lets the next command in. Holding dispatchMu across
// delivery keeps events in command order.
func (m *Manager) unlockAndDispatch() {
	events := m.pending
	m.pending = nil
	m.mu.Unlock()
	defer m.dispatchMu.Unlock()
	if len(events) == 0 {
		return
	}

	m.subMu.Lock()
	subs := make([]func(Event), 0, len(m.subs))
	for _, id := range sortedKeys(m.subs) {
		subs = append(subs, m.subs[id])
	}
	m.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
