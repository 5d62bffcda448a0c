package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/config"
	"github.com/dimveil/dimveil/internal/dimmer"
	"github.com/dimveil/dimveil/internal/platform"
	"github.com/dimveil/dimveil/internal/runtimepath"
	"github.com/dimveil/dimveil/internal/tracker"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	coord        *dimmer.Coordinator
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, coord *dimmer.Coordinator, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		coord:      coord,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
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
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandToggle:
		return s.handleToggle()
	case CommandSetStyle:
		return s.handleSetStyle(req.Payload)
	case CommandSetIntensity:
		return s.handleSetIntensity(req.Payload)
	case CommandSetColor:
		return s.handleSetColor(req.Payload)
	case CommandSetBlur:
		return s.handleSetBlur(req.Payload)
	case CommandSetHighlightMode:
		return s.handleSetHighlightMode(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.coord.Status(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetDisplays returns information about all displays
func (s *Server) handleGetDisplays() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	displayInfos := make([]DisplayInfo, len(displays))
	for i, d := range displays {
		displayInfos[i] = DisplayInfo{
			ID:      d.ID,
			Name:    d.Name,
			X:       d.Bounds.X,
			Y:       d.Bounds.Y,
			Width:   d.Bounds.Width,
			Height:  d.Bounds.Height,
			Primary: d.Primary,
		}
	}

	data := DisplaysData{
		Displays: displayInfos,
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// handleToggle flips dimming on or off and reports the resulting style
func (s *Server) handleToggle() *Response {
	style := s.coord.Toggle()

	resp, _ := NewOKResponse(ToggleData{Style: style.String()})
	return resp
}

func (s *Server) handleSetStyle(payload json.RawMessage) *Response {
	var req SetStylePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid style payload: %v", err))
	}

	style, err := dimmer.ParseStyle(req.Style)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.coord.SetStyle(style)
	s.persist(func(cfg *config.Config) { cfg.Style = style.String() })

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetIntensity(payload json.RawMessage) *Response {
	var req SetIntensityPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid intensity payload: %v", err))
	}
	if req.Intensity < 0 || req.Intensity > 1 {
		return NewErrorResponse(fmt.Sprintf("Intensity %.2f out of range [0, 1]", req.Intensity))
	}

	s.coord.SetIntensity(req.Intensity)
	s.persist(func(cfg *config.Config) { cfg.Intensity = req.Intensity })

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetColor(payload json.RawMessage) *Response {
	var req SetColorPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid color payload: %v", err))
	}

	col, err := colorful.Hex(req.Color)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid color %q: %v", req.Color, err))
	}

	s.coord.SetColor(col)
	s.persist(func(cfg *config.Config) { cfg.Color = col.Hex() })

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetBlur(payload json.RawMessage) *Response {
	var req SetBlurPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid blur payload: %v", err))
	}
	if req.Amount < 0 || req.Amount > 1 {
		return NewErrorResponse(fmt.Sprintf("Blur amount %.2f out of range [0, 1]", req.Amount))
	}

	s.coord.SetBlurAmount(req.Amount)
	s.persist(func(cfg *config.Config) { cfg.BlurAmount = req.Amount })

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetHighlightMode(payload json.RawMessage) *Response {
	var req SetHighlightModePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid highlight mode payload: %v", err))
	}

	mode, err := tracker.ParseMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.coord.SetHighlightMode(mode)
	s.persist(func(cfg *config.Config) { cfg.HighlightMode = mode.String() })

	resp, _ := NewOKResponse(nil)
	return resp
}

// persist applies a mutation to the config and writes it back to disk.
// Save failures are logged, not fatal; the runtime change already took.
func (s *Server) persist(mutate func(*config.Config)) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	mutate(s.cfg)
	if err := s.cfg.Save(); err != nil {
		log.Printf("Failed to save config: %v", err)
	}
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

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
