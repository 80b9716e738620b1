package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/shellwm/internal/config"
	"github.com/1broseidon/shellwm/internal/runtimepath"
	"github.com/1broseidon/shellwm/internal/viewport"
	"github.com/1broseidon/shellwm/internal/wm"
)

// maxRequestBytes bounds a single request line.
const maxRequestBytes = 1 << 20

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgFiles     []string
	cfgMu        sync.RWMutex
	manager      *wm.Manager
	vp           viewport.Source
	loadConfig   func() (*config.LoadResult, error)
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(cfg *config.Config, manager *wm.Manager, vp viewport.Source, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, cfg, manager, vp, reloadChan), nil
}

// NewServerAt creates a server bound to socketPath. A stale socket file is
// removed.
func NewServerAt(socketPath string, cfg *config.Config, manager *wm.Manager, vp viewport.Source, reloadChan chan struct{}) *Server {
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		manager:    manager,
		vp:         vp,
		loadConfig: config.LoadWithSources,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves newline-delimited requests until the client
// closes the connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	for scanner.Scan() {
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		if !s.serveLine(conn, data) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			s.sendError(conn, "Invalid request: request too large")
			return
		}
		if !s.isShuttingDown() {
			log.Printf("IPC read error: %v", err)
		}
	}
}

func (s *Server) serveLine(conn net.Conn, data []byte) bool {
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return true
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return false
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
		return false
	}
	return true
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandOpen:
		return s.handleOpen(req.Payload)
	case CommandClose:
		return s.handleWindowCommand(req.Payload, s.manager.Close)
	case CommandFocus:
		return s.handleWindowCommand(req.Payload, s.manager.Focus)
	case CommandMinimize:
		return s.handleWindowCommand(req.Payload, s.manager.Minimize)
	case CommandMaximize:
		return s.handleWindowCommand(req.Payload, s.manager.Maximize)
	case CommandRestore:
		return s.handleWindowCommand(req.Payload, s.manager.Restore)
	case CommandUpdateBounds:
		return s.handleUpdateBounds(req.Payload)
	case CommandList:
		return s.handleList()
	case CommandFind:
		return s.handleWindowCommand(req.Payload, nil)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("%v: %s", ErrUnknownCommand, req.Command))
	}
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return errors.New("payload is required")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// windowResponse reports the window after a command. Unknown ids are not
// an error.
func (s *Server) windowResponse(id string) *Response {
	w, ok := s.manager.Find(id)
	if !ok {
		return okResponse(WindowData{})
	}
	return okResponse(WindowData{Found: true, Window: &w})
}

func (s *Server) handleOpen(payload json.RawMessage) *Response {
	var req OpenPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}

	var opts *wm.OpenOptions
	if req.Size != nil || req.Position != nil || req.Center {
		opts = &wm.OpenOptions{Size: req.Size, Position: req.Position, Center: req.Center}
	}
	w := s.manager.Open(req.ID, req.Title, req.Component, req.Props, opts)
	return okResponse(WindowData{Found: true, Window: &w})
}

// handleWindowCommand applies apply to the addressed window. A nil apply
// only looks the window up.
func (s *Server) handleWindowCommand(payload json.RawMessage, apply func(string)) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	if apply != nil {
		apply(req.ID)
	}
	return s.windowResponse(req.ID)
}

func (s *Server) handleUpdateBounds(payload json.RawMessage) *Response {
	var req UpdateBoundsPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid bounds payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	s.manager.UpdateBounds(req.ID, wm.Bounds{Position: req.Position, Size: req.Size})
	return s.windowResponse(req.ID)
}

func (s *Server) handleList() *Response {
	return okResponse(WindowsData{
		Windows: s.manager.Windows(),
		Stack:   s.manager.Stack(),
	})
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		WindowCount:   s.manager.Len(),
		NextZIndex:    s.manager.NextZIndex(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	if w, ok := s.manager.Focused(); ok {
		status.FocusedID = w.ID
	}
	if s.vp != nil {
		if vp, err := s.vp.Viewport(); err != nil {
			status.ViewportError = err.Error()
		} else {
			status.Viewport = &vp
		}
	}
	if path, err := config.DefaultConfigPath(); err == nil {
		status.ConfigPath = path
	}

	return okResponse(status)
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	res, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.UpdateLoaded(res)

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	return okResponse(nil)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// UpdateLoaded replaces the config and the list of files it was read from.
func (s *Server) UpdateLoaded(res *config.LoadResult) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = res.Config
	s.cfgFiles = res.Files
}

// Loaded returns the current config and the files of the last load that
// went through UpdateLoaded.
func (s *Server) Loaded() (*config.Config, []string) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg, s.cfgFiles
}
