package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandOpen         CommandType = "OPEN"
	CommandClose        CommandType = "CLOSE"
	CommandFocus        CommandType = "FOCUS"
	CommandMinimize     CommandType = "MINIMIZE"
	CommandMaximize     CommandType = "MAXIMIZE"
	CommandRestore      CommandType = "RESTORE"
	CommandUpdateBounds CommandType = "UPDATE_BOUNDS"
	CommandList         CommandType = "LIST"
	CommandFind         CommandType = "FIND"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandReload       CommandType = "RELOAD"
)

// ErrUnknownCommand is reported for a command the server does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OpenPayload is the payload for OPEN.
type OpenPayload struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Component string          `json:"component"`
	Props     map[string]any  `json:"props,omitempty"`
	Size      *geometry.Size  `json:"size,omitempty"`
	Position  *geometry.Point `json:"position,omitempty"`
	Center    bool            `json:"center,omitempty"`
}

// WindowPayload addresses a single window by id. Used by CLOSE, FOCUS,
// MINIMIZE, MAXIMIZE, RESTORE and FIND.
type WindowPayload struct {
	ID string `json:"id"`
}

// UpdateBoundsPayload is the payload for UPDATE_BOUNDS.
type UpdateBoundsPayload struct {
	ID       string          `json:"id"`
	Position *geometry.Point `json:"position,omitempty"`
	Size     *geometry.Size  `json:"size,omitempty"`
}

// WindowData is returned by commands that address one window. Window is
// nil when the id is not open.
type WindowData struct {
	Found  bool       `json:"found"`
	Window *wm.Window `json:"window,omitempty"`
}

// WindowsData is returned by LIST. Stack holds ids from top to bottom.
type WindowsData struct {
	Windows []wm.Window `json:"windows"`
	Stack   []string    `json:"stack"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int                `json:"window_count"`
	FocusedID     string             `json:"focused_id,omitempty"`
	NextZIndex    int                `json:"next_z_index"`
	Viewport      *geometry.Viewport `json:"viewport,omitempty"`
	ViewportError string             `json:"viewport_error,omitempty"`
	ConfigPath    string             `json:"config_path,omitempty"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	DaemonRunning bool               `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: command is required")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
