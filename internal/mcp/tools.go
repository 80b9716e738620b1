package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/wm"
)

var errIDRequired = errors.New("id is required")

func newWindowID() string {
	return uuid.NewString()
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errIDRequired
	}
	return id, nil
}

func windowOutput(w *wm.Window) WindowOutput {
	return WindowOutput{Found: w != nil, Window: w}
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id := strings.TrimSpace(args.ID)
	if id == "" {
		id = s.newID()
	}
	if strings.TrimSpace(args.Component) == "" {
		return nil, WindowOutput{}, fmt.Errorf("component is required")
	}

	w, err := s.ctl.Open(ipc.OpenPayload{
		ID:        id,
		Title:     args.Title,
		Component: args.Component,
		Props:     args.Props,
		Size:      args.Size,
		Position:  args.Position,
		Center:    args.Center,
	})
	if err != nil {
		return nil, WindowOutput{}, fmt.Errorf("open window %q: %w", id, err)
	}
	return nil, windowOutput(w), nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	id, err := requireID(args.ID)
	if err != nil {
		return nil, CloseWindowOutput{}, err
	}

	existing, err := s.ctl.Find(id)
	if err != nil {
		return nil, CloseWindowOutput{}, fmt.Errorf("close window %q: %w", id, err)
	}
	if err := s.ctl.Close(id); err != nil {
		return nil, CloseWindowOutput{}, fmt.Errorf("close window %q: %w", id, err)
	}
	return nil, CloseWindowOutput{ID: id, Closed: existing != nil}, nil
}

// windowTool adapts a single-id controller call into a tool handler.
func (s *Server) windowTool(verb string, call func(id string) (*wm.Window, error)) func(context.Context, *mcpsdk.CallToolRequest, WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
		id, err := requireID(args.ID)
		if err != nil {
			return nil, WindowOutput{}, err
		}
		w, err := call(id)
		if err != nil {
			return nil, WindowOutput{}, fmt.Errorf("%s window %q: %w", verb, id, err)
		}
		return nil, windowOutput(w), nil
	}
}

func (s *Server) handleFocusWindow(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("focus", s.ctl.Focus)(ctx, req, args)
}

func (s *Server) handleMinimizeWindow(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("minimize", s.ctl.Minimize)(ctx, req, args)
}

func (s *Server) handleMaximizeWindow(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("maximize", s.ctl.Maximize)(ctx, req, args)
}

func (s *Server) handleRestoreWindow(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("restore", s.ctl.Restore)(ctx, req, args)
}

func (s *Server) handleGetWindow(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowIDInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowTool("get", s.ctl.Find)(ctx, req, args)
}

func (s *Server) handleUpdateBounds(_ context.Context, _ *mcpsdk.CallToolRequest, args UpdateBoundsInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := requireID(args.ID)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if args.Position == nil && args.Size == nil {
		return nil, WindowOutput{}, fmt.Errorf("position or size is required")
	}
	if args.Size != nil && (args.Size.Width <= 0 || args.Size.Height <= 0) {
		return nil, WindowOutput{}, fmt.Errorf("size width and height must be > 0")
	}

	w, err := s.ctl.UpdateBounds(id, args.Position, args.Size)
	if err != nil {
		return nil, WindowOutput{}, fmt.Errorf("update bounds of window %q: %w", id, err)
	}
	return nil, windowOutput(w), nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.ctl.List()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}

	includeMinimized := args.IncludeMinimized == nil || *args.IncludeMinimized
	out := ListWindowsOutput{
		Windows: make([]wm.Window, 0, len(data.Windows)),
		Stack:   make([]string, 0, len(data.Stack)),
	}
	hidden := make(map[string]bool)
	for _, w := range data.Windows {
		if w.Focused {
			out.FocusedID = w.ID
		}
		if w.Minimized && !includeMinimized {
			hidden[w.ID] = true
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	for _, id := range data.Stack {
		if !hidden[id] {
			out.Stack = append(out.Stack, id)
		}
	}
	return nil, out, nil
}
