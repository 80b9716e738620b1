package geometry

// DefaultChromeHeight is the vertical space reserved for the shell taskbar.
const DefaultChromeHeight = 48

// Point is a window origin in shell units.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a window extent in shell units.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Viewport is the visible desktop area the shell renders into.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FallbackSize is used for component kinds with no table entry.
var FallbackSize = Size{Width: 640, Height: 480}

// BuiltinComponentSizes returns the default size table for the shell's
// bundled applications.
func BuiltinComponentSizes() map[string]Size {
	return map[string]Size{
		"DeviceManager":  {Width: 1200, Height: 800},
		"FileManager":    {Width: 900, Height: 600},
		"ProcessManager": {Width: 1200, Height: 750},
		"Terminal":       {Width: 800, Height: 500},
		"SystemControl":  {Width: 700, Height: 500},
		"MemoryManager":  {Width: 900, Height: 600},
	}
}

// Policy computes default window geometry. The zero value has an empty
// component table, the builtin fallback size and no chrome.
type Policy struct {
	Components   map[string]Size
	Fallback     Size
	ChromeHeight int
}

// DefaultPolicy returns a policy backed by the builtin component table.
func DefaultPolicy() Policy {
	return Policy{
		Components:   BuiltinComponentSizes(),
		Fallback:     FallbackSize,
		ChromeHeight: DefaultChromeHeight,
	}
}

// DefaultSize returns the configured size for a component kind.
func (p Policy) DefaultSize(component string) Size {
	if size, ok := p.Components[component]; ok {
		return size
	}
	if p.Fallback.Width > 0 && p.Fallback.Height > 0 {
		return p.Fallback
	}
	return FallbackSize
}

// CenterPosition centers a window of the given size in the viewport,
// leaving room for the shell chrome.
func (p Policy) CenterPosition(size Size, vp Viewport) Point {
	return CenterPosition(size.Width, size.Height, vp, p.chrome())
}

// MaximizedBounds returns the geometry of a window filling the usable
// viewport.
func (p Policy) MaximizedBounds(vp Viewport) (Point, Size) {
	return Point{}, Size{Width: vp.Width, Height: vp.Height - p.chrome()}
}

func (p Policy) chrome() int {
	return max(0, p.ChromeHeight)
}

// CenterPosition returns the top-left corner that centers a width x height
// window in vp. Oversized windows clamp to the origin instead of going
// off-screen.
func CenterPosition(width, height int, vp Viewport, chromeHeight int) Point {
	return Point{
		X: max(0, (vp.Width-width)/2),
		Y: max(0, (vp.Height-height-chromeHeight)/2),
	}
}

// CascadePosition returns the default origin for the nth un-positioned
// window so successive opens don't fully overlap.
func CascadePosition(n int) Point {
	offset := 100 + 30*n
	return Point{X: offset, Y: offset}
}
