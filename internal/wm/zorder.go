package wm

// BaseZIndex is the stacking key given to the first focused window.
const BaseZIndex = 100

// zAllocator hands out strictly increasing stacking keys. Only focus
// draws from it, so stacking order is exactly the history of focus.
type zAllocator struct {
	next int
}

func newZAllocator(base int) zAllocator {
	return zAllocator{next: base}
}

func (a *zAllocator) Next() int {
	z := a.next
	a.next++
	return z
}

func (a *zAllocator) Peek() int {
	return a.next
}
