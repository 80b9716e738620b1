package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/runtimepath"
	"github.com/1broseidon/shellwm/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		if rest, ok := strings.CutPrefix(resp.Error, ErrUnknownCommand.Error()); ok {
			return nil, fmt.Errorf("daemon error: %w%s", ErrUnknownCommand, rest)
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", strings.ToLower(string(cmd)), err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", strings.ToLower(string(cmd)), err)
	}
	return nil
}

func (c *Client) windowCall(cmd CommandType, id string) (*wm.Window, error) {
	var data WindowData
	if err := c.call(cmd, WindowPayload{ID: id}, &data); err != nil {
		return nil, err
	}
	return data.Window, nil
}

// Open asks the daemon to open (or focus) a window.
func (c *Client) Open(p OpenPayload) (*wm.Window, error) {
	var data WindowData
	if err := c.call(CommandOpen, p, &data); err != nil {
		return nil, err
	}
	return data.Window, nil
}

// Close removes a window. The returned window is always nil.
func (c *Client) Close(id string) error {
	_, err := c.windowCall(CommandClose, id)
	return err
}

// Focus raises a window. A nil window means the id is not open.
func (c *Client) Focus(id string) (*wm.Window, error) {
	return c.windowCall(CommandFocus, id)
}

func (c *Client) Minimize(id string) (*wm.Window, error) {
	return c.windowCall(CommandMinimize, id)
}

// Maximize toggles the maximized state.
func (c *Client) Maximize(id string) (*wm.Window, error) {
	return c.windowCall(CommandMaximize, id)
}

func (c *Client) Restore(id string) (*wm.Window, error) {
	return c.windowCall(CommandRestore, id)
}

// UpdateBounds moves and/or resizes a window; nil fields are unchanged.
func (c *Client) UpdateBounds(id string, pos *geometry.Point, size *geometry.Size) (*wm.Window, error) {
	var data WindowData
	if err := c.call(CommandUpdateBounds, UpdateBoundsPayload{ID: id, Position: pos, Size: size}, &data); err != nil {
		return nil, err
	}
	return data.Window, nil
}

// Find looks a window up without changing it.
func (c *Client) Find(id string) (*wm.Window, error) {
	return c.windowCall(CommandFind, id)
}

// List returns every open window in open order and the stack top first.
func (c *Client) List() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandList, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
