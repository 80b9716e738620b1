package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/wm"
)

const (
	ServerName    = "shellwm"
	ServerVersion = "0.1.0"
)

// Controller forwards window commands to the engine. *ipc.Client
// implements it against a running daemon.
type Controller interface {
	Open(p ipc.OpenPayload) (*wm.Window, error)
	Close(id string) error
	Focus(id string) (*wm.Window, error)
	Minimize(id string) (*wm.Window, error)
	Maximize(id string) (*wm.Window, error)
	Restore(id string) (*wm.Window, error)
	UpdateBounds(id string, pos *geometry.Point, size *geometry.Size) (*wm.Window, error)
	Find(id string) (*wm.Window, error)
	List() (*ipc.WindowsData, error)
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server exposing shellwm window commands as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
	newID     func() string
}

// NewServer creates an MCP server that forwards every tool call to ctl.
func NewServer(ctl Controller) *Server {
	s := &Server{
		ctl:   ctl,
		newID: newWindowID,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a shell window for a component, or focus it if the id is already open. The new window is focused and stacked on top. Returns the window record.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Focus does not move to another window. Closing an unknown id is a no-op.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and raise it above every other window. Minimized windows cannot be focused; restore them first.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Hide a window. Focus passes to the topmost remaining visible window.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle maximize. Maximizing fills the viewport below the shell chrome; maximizing again re-centers the window at its component's default size.",
	}, s.handleMaximizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_window",
		Description: "Show a minimized window again and focus it.",
	}, s.handleRestoreWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "update_window_bounds",
		Description: "Move and/or resize a window. Omitted fields are left unchanged. Ignored while the window is minimized.",
	}, s.handleUpdateBounds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every open window in open order, with the stacking order from top to bottom and the focused window id.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window",
		Description: "Look a window up by id without changing it.",
	}, s.handleGetWindow)
}
