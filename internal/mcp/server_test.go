package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/viewport"
	"github.com/1broseidon/shellwm/internal/wm"
)

// managerController drives an in-process engine the way the daemon does.
type managerController struct {
	m   *wm.Manager
	err error
}

func newManagerController() *managerController {
	return &managerController{
		m: wm.NewManager(wm.Options{Policy: geometry.DefaultPolicy(), Viewport: viewport.NewStatic(1920, 1080)}),
	}
}

func (c *managerController) find(id string) (*wm.Window, error) {
	if c.err != nil {
		return nil, c.err
	}
	w, ok := c.m.Find(id)
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (c *managerController) apply(id string, fn func(string)) (*wm.Window, error) {
	if c.err != nil {
		return nil, c.err
	}
	fn(id)
	return c.find(id)
}

func (c *managerController) Open(p ipc.OpenPayload) (*wm.Window, error) {
	if c.err != nil {
		return nil, c.err
	}
	var opts *wm.OpenOptions
	if p.Size != nil || p.Position != nil || p.Center {
		opts = &wm.OpenOptions{Size: p.Size, Position: p.Position, Center: p.Center}
	}
	w := c.m.Open(p.ID, p.Title, p.Component, p.Props, opts)
	return &w, nil
}

func (c *managerController) Close(id string) error {
	_, err := c.apply(id, c.m.Close)
	return err
}

func (c *managerController) Focus(id string) (*wm.Window, error) { return c.apply(id, c.m.Focus) }
func (c *managerController) Minimize(id string) (*wm.Window, error) {
	return c.apply(id, c.m.Minimize)
}
func (c *managerController) Maximize(id string) (*wm.Window, error) {
	return c.apply(id, c.m.Maximize)
}
func (c *managerController) Restore(id string) (*wm.Window, error) { return c.apply(id, c.m.Restore) }
func (c *managerController) Find(id string) (*wm.Window, error)    { return c.find(id) }

func (c *managerController) UpdateBounds(id string, pos *geometry.Point, size *geometry.Size) (*wm.Window, error) {
	return c.apply(id, func(id string) {
		c.m.UpdateBounds(id, wm.Bounds{Position: pos, Size: size})
	})
}

func (c *managerController) List() (*ipc.WindowsData, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &ipc.WindowsData{Windows: c.m.Windows(), Stack: c.m.Stack()}, nil
}

func TestHandleOpenWindow(t *testing.T) {
	ctl := newManagerController()
	s := NewServer(ctl)
	s.newID = func() string { return "generated" }

	_, out, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{Component: "Terminal", Center: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !out.Found || out.Window.ID != "generated" {
		t.Fatalf("expected generated id, got %#v", out)
	}
	if out.Window.Position != (geometry.Point{X: 560, Y: 266}) {
		t.Fatalf("expected centered terminal, got %v", out.Window.Position)
	}

	if _, _, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{ID: "x"}); err == nil {
		t.Fatalf("expected component required error")
	}
}

func TestWindowTools_ForwardToController(t *testing.T) {
	ctl := newManagerController()
	s := NewServer(ctl)
	ctx := context.Background()

	s.handleOpenWindow(ctx, nil, OpenWindowInput{ID: "a", Component: "Terminal"})
	s.handleOpenWindow(ctx, nil, OpenWindowInput{ID: "b", Component: "FileManager"})

	_, out, err := s.handleMaximizeWindow(ctx, nil, WindowIDInput{ID: "a"})
	if err != nil {
		t.Fatalf("maximize: %v", err)
	}
	if !out.Window.Maximized || out.Window.Size != (geometry.Size{Width: 1920, Height: 1032}) {
		t.Fatalf("expected maximized a, got %#v", out.Window)
	}

	_, out, err = s.handleMinimizeWindow(ctx, nil, WindowIDInput{ID: "a"})
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if !out.Window.Minimized {
		t.Fatalf("expected minimized a, got %#v", out.Window)
	}

	_, out, _ = s.handleGetWindow(ctx, nil, WindowIDInput{ID: "b"})
	if !out.Window.Focused {
		t.Fatalf("expected b focused after minimizing a")
	}

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{IncludeMinimized: new(bool)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Windows) != 1 || list.Windows[0].ID != "b" || strings.Join(list.Stack, ",") != "b" {
		t.Fatalf("expected only b listed, got %#v", list)
	}
	if list.FocusedID != "b" {
		t.Fatalf("expected focused b, got %q", list.FocusedID)
	}

	_, out, err = s.handleRestoreWindow(ctx, nil, WindowIDInput{ID: "a"})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if out.Window.Minimized || !out.Window.Focused {
		t.Fatalf("expected a restored and focused, got %#v", out.Window)
	}

	_, out, err = s.handleFocusWindow(ctx, nil, WindowIDInput{ID: "b"})
	if err != nil || !out.Window.Focused {
		t.Fatalf("focus b: %v %#v", err, out.Window)
	}

	pos := geometry.Point{X: 10, Y: 20}
	_, out, err = s.handleUpdateBounds(ctx, nil, UpdateBoundsInput{ID: "b", Position: &pos})
	if err != nil {
		t.Fatalf("update bounds: %v", err)
	}
	if out.Window.Position != pos {
		t.Fatalf("expected moved b, got %v", out.Window.Position)
	}

	_, closed, err := s.handleCloseWindow(ctx, nil, WindowIDInput{ID: "b"})
	if err != nil || !closed.Closed {
		t.Fatalf("close b: %v %#v", err, closed)
	}
	_, closed, err = s.handleCloseWindow(ctx, nil, WindowIDInput{ID: "b"})
	if err != nil || closed.Closed {
		t.Fatalf("second close should report not closed: %v %#v", err, closed)
	}
}

func TestWindowTools_Validation(t *testing.T) {
	ctl := newManagerController()
	s := NewServer(ctl)
	ctx := context.Background()

	if _, _, err := s.handleFocusWindow(ctx, nil, WindowIDInput{ID: "  "}); !errors.Is(err, errIDRequired) {
		t.Fatalf("expected id required, got %v", err)
	}
	if _, _, err := s.handleUpdateBounds(ctx, nil, UpdateBoundsInput{ID: "a"}); err == nil {
		t.Fatalf("expected error for empty bounds")
	}
	bad := geometry.Size{Width: 0, Height: 10}
	if _, _, err := s.handleUpdateBounds(ctx, nil, UpdateBoundsInput{ID: "a", Size: &bad}); err == nil {
		t.Fatalf("expected error for zero width")
	}

	_, out, err := s.handleFocusWindow(ctx, nil, WindowIDInput{ID: "ghost"})
	if err != nil || out.Found {
		t.Fatalf("unknown id should be a no-op, got %v %#v", err, out)
	}
}

func TestWindowTools_ControllerErrorsWrapped(t *testing.T) {
	ctl := newManagerController()
	ctl.err = errors.New("failed to connect to daemon")
	s := NewServer(ctl)

	_, _, err := s.handleMaximizeWindow(context.Background(), nil, WindowIDInput{ID: "a"})
	if !errors.Is(err, ctl.err) {
		t.Fatalf("expected wrapped controller error, got %v", err)
	}
	if !strings.Contains(err.Error(), `maximize window "a"`) {
		t.Fatalf("expected verb and id in error, got %v", err)
	}
}

func TestServer_ListsToolsOverTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(newManagerController())
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	if _, err := s.mcpServer.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	got := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"open_window", "close_window", "focus_window", "minimize_window", "maximize_window",
		"restore_window", "update_window_bounds", "list_windows", "get_window",
	} {
		if !got[name] {
			t.Fatalf("expected tool %q to be registered, got %v", name, got)
		}
	}

	call, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "open_window",
		Arguments: map[string]any{"id": "t1", "component": "Terminal"},
	})
	if err != nil {
		t.Fatalf("call open_window: %v", err)
	}
	if call.IsError {
		t.Fatalf("open_window returned a tool error: %#v", call.Content)
	}
}
