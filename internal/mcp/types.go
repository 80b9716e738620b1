package mcp

import (
	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/wm"
)

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	ID        string          `json:"id,omitempty" jsonschema:"Window id. Opening an id that is already open focuses it. A random id is generated when omitted."`
	Title     string          `json:"title,omitempty" jsonschema:"Title bar label"`
	Component string          `json:"component" jsonschema:"required,Component kind (e.g. Terminal, FileManager). Selects the default size."`
	Props     map[string]any  `json:"props,omitempty" jsonschema:"Opaque properties handed to the component"`
	Size      *geometry.Size  `json:"size,omitempty" jsonschema:"Initial size; defaults to the component's configured size"`
	Position  *geometry.Point `json:"position,omitempty" jsonschema:"Initial top-left corner; defaults to a cascade offset"`
	Center    bool            `json:"center,omitempty" jsonschema:"Center the window in the viewport (overrides position)"`
}

// WindowIDInput addresses one window.
type WindowIDInput struct {
	ID string `json:"id" jsonschema:"required,Window id"`
}

// UpdateBoundsInput is the input for the update_window_bounds tool.
type UpdateBoundsInput struct {
	ID       string          `json:"id" jsonschema:"required,Window id"`
	Position *geometry.Point `json:"position,omitempty" jsonschema:"New top-left corner; unchanged when omitted"`
	Size     *geometry.Size  `json:"size,omitempty" jsonschema:"New size; unchanged when omitted"`
}

// WindowOutput reports one window after a command. Found is false when the
// id is not open; commands on unknown ids are no-ops, not errors.
type WindowOutput struct {
	Found  bool       `json:"found"`
	Window *wm.Window `json:"window,omitempty"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID     string `json:"id"`
	Closed bool   `json:"closed"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	IncludeMinimized *bool `json:"include_minimized,omitempty" jsonschema:"Include minimized windows (default: true)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows   []wm.Window `json:"windows"`
	Stack     []string    `json:"stack" jsonschema:"Window ids from top to bottom"`
	FocusedID string      `json:"focused_id,omitempty"`
}
