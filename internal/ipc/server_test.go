package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/shellwm/internal/config"
	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/viewport"
	"github.com/1broseidon/shellwm/internal/wm"
)

func newTestServer(t *testing.T) (*Server, *viewport.Static) {
	t.Helper()
	// unix socket paths are length-limited; t.TempDir can be too deep.
	dir, err := os.MkdirTemp("", "shellwm-ipc")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	vp := viewport.NewStatic(1920, 1080)
	m := wm.NewManager(wm.Options{Policy: geometry.DefaultPolicy(), Viewport: vp})
	s := NewServerAt(filepath.Join(dir, "s.sock"), config.DefaultConfig(), m, vp, make(chan struct{}, 1))
	return s, vp
}

func request(t *testing.T, cmd CommandType, payload any) *Request {
	t.Helper()
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req.Payload = data
	}
	return req
}

func decodeWindow(t *testing.T, resp *Response) WindowData {
	t.Helper()
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s: %s", resp.Status, resp.Error)
	}
	var data WindowData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode window data: %v", err)
	}
	return data
}

func TestHandleCommand_OpenFocusMinimize(t *testing.T) {
	s, _ := newTestServer(t)

	data := decodeWindow(t, s.handleCommand(request(t, CommandOpen, OpenPayload{
		ID: "t1", Title: "Terminal", Component: "Terminal", Center: true,
	})))
	if !data.Found || data.Window == nil {
		t.Fatalf("expected opened window, got %#v", data)
	}
	w := data.Window
	if !w.Focused || w.ZIndex != wm.BaseZIndex {
		t.Fatalf("expected focused window at z %d, got %#v", wm.BaseZIndex, w)
	}
	if w.Size != (geometry.Size{Width: 800, Height: 500}) || w.Position != (geometry.Point{X: 560, Y: 266}) {
		t.Fatalf("unexpected geometry %v %v", w.Position, w.Size)
	}

	decodeWindow(t, s.handleCommand(request(t, CommandOpen, OpenPayload{ID: "f1", Component: "FileManager"})))

	data = decodeWindow(t, s.handleCommand(request(t, CommandFocus, WindowPayload{ID: "t1"})))
	if !data.Window.Focused || data.Window.ZIndex != wm.BaseZIndex+2 {
		t.Fatalf("expected t1 refocused at z %d, got %#v", wm.BaseZIndex+2, data.Window)
	}

	data = decodeWindow(t, s.handleCommand(request(t, CommandMinimize, WindowPayload{ID: "t1"})))
	// Minimized and visible are separate flags; a minimized window stays visible.
	if !data.Window.Minimized || !data.Window.Visible || data.Window.Focused {
		t.Fatalf("expected t1 minimized and still visible, got %#v", data.Window)
	}
	f1, _ := s.manager.Find("f1")
	if !f1.Focused {
		t.Fatalf("expected f1 to take focus after minimize")
	}
}

func TestHandleCommand_UnknownIDIsOK(t *testing.T) {
	s, _ := newTestServer(t)

	for _, cmd := range []CommandType{CommandClose, CommandFocus, CommandMinimize, CommandMaximize, CommandRestore, CommandFind} {
		data := decodeWindow(t, s.handleCommand(request(t, cmd, WindowPayload{ID: "ghost"})))
		if data.Found || data.Window != nil {
			t.Fatalf("%s: expected not found, got %#v", cmd, data)
		}
	}
	if s.manager.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestHandleCommand_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{"unknown command", &Request{Command: "EXPLODE"}, "unknown command"},
		{"missing payload", &Request{Command: CommandFocus}, "payload is required"},
		{"missing id", request(t, CommandFocus, WindowPayload{}), "id is required"},
		{"open missing id", request(t, CommandOpen, OpenPayload{Title: "x"}), "id is required"},
		{"malformed", &Request{Command: CommandOpen, Payload: json.RawMessage(`{"id": 5}`)}, "Invalid open payload"},
		{"unknown field", &Request{Command: CommandUpdateBounds, Payload: json.RawMessage(`{"id":"a","width":5}`)}, "Invalid bounds payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.handleCommand(tt.req)
			if resp.Status != "ERROR" {
				t.Fatalf("expected ERROR, got %#v", resp)
			}
			if !strings.Contains(resp.Error, tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, resp.Error)
			}
		})
	}
}

func TestHandleCommand_UpdateBoundsAndList(t *testing.T) {
	s, _ := newTestServer(t)
	s.handleCommand(request(t, CommandOpen, OpenPayload{ID: "a"}))
	s.handleCommand(request(t, CommandOpen, OpenPayload{ID: "b"}))

	data := decodeWindow(t, s.handleCommand(request(t, CommandUpdateBounds, UpdateBoundsPayload{
		ID:       "a",
		Position: &geometry.Point{X: 5, Y: 6},
	})))
	if data.Window.Position != (geometry.Point{X: 5, Y: 6}) || data.Window.Size != geometry.FallbackSize {
		t.Fatalf("unexpected bounds %v %v", data.Window.Position, data.Window.Size)
	}

	resp := s.handleCommand(&Request{Command: CommandList})
	var list WindowsData
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Windows) != 2 || list.Windows[0].ID != "a" {
		t.Fatalf("expected windows in open order, got %#v", list.Windows)
	}
	if strings.Join(list.Stack, ",") != "b,a" {
		t.Fatalf("expected stack b,a, got %v", list.Stack)
	}
}

func TestHandleCommand_MaximizeUsesLiveViewport(t *testing.T) {
	s, vp := newTestServer(t)
	s.handleCommand(request(t, CommandOpen, OpenPayload{ID: "a", Component: "Terminal"}))

	vp.Resize(1280, 720)
	data := decodeWindow(t, s.handleCommand(request(t, CommandMaximize, WindowPayload{ID: "a"})))
	if !data.Window.Maximized || data.Window.Size != (geometry.Size{Width: 1280, Height: 672}) {
		t.Fatalf("expected maximized to 1280x672, got %#v", data.Window)
	}
}

func TestHandleCommand_GetStatus(t *testing.T) {
	s, _ := newTestServer(t)
	s.handleCommand(request(t, CommandOpen, OpenPayload{ID: "a"}))

	resp := s.handleCommand(&Request{Command: CommandGetStatus})
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.DaemonRunning || status.WindowCount != 1 || status.FocusedID != "a" {
		t.Fatalf("unexpected status %#v", status)
	}
	if status.NextZIndex != wm.BaseZIndex+1 {
		t.Fatalf("expected next z %d, got %d", wm.BaseZIndex+1, status.NextZIndex)
	}
	if status.Viewport == nil || status.Viewport.Width != 1920 {
		t.Fatalf("expected viewport in status, got %#v", status.Viewport)
	}
}

func TestHandleCommand_Reload(t *testing.T) {
	s, _ := newTestServer(t)

	next := config.DefaultConfig()
	next.ChromeHeight = 10
	s.loadConfig = func() (*config.LoadResult, error) {
		return &config.LoadResult{Config: next, Files: []string{"/etc/shellwm/base.yaml", "/etc/shellwm/config.yaml"}}, nil
	}

	resp := s.handleCommand(&Request{Command: CommandReload})
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %#v", resp)
	}
	cfg, files := s.Loaded()
	if cfg != next {
		t.Fatalf("expected config to be replaced")
	}
	if strings.Join(files, ",") != "/etc/shellwm/base.yaml,/etc/shellwm/config.yaml" {
		t.Fatalf("expected reloaded files to be kept, got %v", files)
	}
	select {
	case <-s.reloadChan:
	default:
		t.Fatalf("expected reload notification")
	}

	s.loadConfig = func() (*config.LoadResult, error) { return nil, errors.New("bad yaml") }
	resp = s.handleCommand(&Request{Command: CommandReload})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "bad yaml") {
		t.Fatalf("expected reload error, got %#v", resp)
	}
	if cfg, _ := s.Loaded(); cfg != next {
		t.Fatalf("failed reload must keep the previous config")
	}
}

func TestServerClient_RoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	c := NewClientAt(s.SocketPath())
	if err := c.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	w, err := c.Open(OpenPayload{ID: "t1", Component: "Terminal", Props: map[string]any{"cwd": "/home"}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if w == nil || w.Props["cwd"] != "/home" {
		t.Fatalf("expected props round trip, got %#v", w)
	}

	if _, err := c.Open(OpenPayload{ID: "t2"}); err != nil {
		t.Fatalf("open t2: %v", err)
	}
	w, err = c.Maximize("t1")
	if err != nil {
		t.Fatalf("maximize: %v", err)
	}
	if !w.Maximized || !w.Focused {
		t.Fatalf("expected t1 maximized and focused, got %#v", w)
	}

	size := geometry.Size{Width: 300, Height: 200}
	w, err = c.UpdateBounds("t2", nil, &size)
	if err != nil {
		t.Fatalf("update bounds: %v", err)
	}
	if w.Size != size {
		t.Fatalf("expected resized t2, got %v", w.Size)
	}

	if err := c.Close("t2"); err != nil {
		t.Fatalf("close: %v", err)
	}
	w, err = c.Find("t2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if w != nil {
		t.Fatalf("expected t2 gone, got %#v", w)
	}

	list, err := c.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Windows) != 1 || list.Windows[0].ID != "t1" {
		t.Fatalf("unexpected list %#v", list.Windows)
	}

	_, err = c.sendRequest(&Request{Command: "EXPLODE"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestServer_MultipleRequestsPerConnection(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	conn, err := net.DialTimeout("unix", s.SocketPath(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	lines := strings.Join([]string{
		`{"command":"OPEN","payload":{"id":"a"}}`,
		`not json`,
		`{"command":"FIND","payload":{"id":"a"}}`,
		"",
	}, "\n")
	if _, err := conn.Write([]byte(lines)); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader := bufio.NewReader(conn)
	want := []string{"OK", "ERROR", "OK"}
	for i, status := range want {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			t.Fatalf("read response %d: %v", i, err)
		}
		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			t.Fatalf("decode response %d: %v", i, err)
		}
		if resp.Status != status {
			t.Fatalf("response %d: expected %s, got %#v", i, status, resp)
		}
	}
}

func TestServer_RejectsOversizedRequest(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	conn, err := net.DialTimeout("unix", s.SocketPath(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	// The server stops reading at the limit, so the tail of this write may fail.
	go conn.Write([]byte(strings.Repeat("x", maxRequestBytes+1024) + "\n"))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "request too large") {
		t.Fatalf("expected request too large error, got %#v", resp)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(os.TempDir(), "shellwm-does-not-exist.sock"))
	err := c.Ping()
	if err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
