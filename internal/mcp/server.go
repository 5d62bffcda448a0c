// Package mcp exposes dimming control as MCP tools over the daemon's IPC
// socket, so MCP clients can adjust focus dimming programmatically.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dimveil/dimveil/internal/ipc"
)

const (
	ServerName    = "dimveil"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools use.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Toggle() (string, error)
	SetStyle(style string) error
	SetIntensity(intensity float64) error
	SetColor(hex string) error
	SetBlur(amount float64) error
	SetHighlightMode(mode string) error
}

// Server is the MCP server for dimming control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates a new MCP server talking to the local daemon.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
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
		Name:        "get_dimming_status",
		Description: "Get the current dimming state: style, visibility, intensity, color, blur amount, highlight mode, and whether an override (hold-to-reveal or desktop focus) is suspending dimming.",
	}, s.handleGetDimmingStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_dimming",
		Description: "Update dimming settings. All fields are optional; only the fields provided are applied. Style is one of off, dim, blur, dim+blur. Intensity and blur_amount are in [0, 1]. Color is a hex string. Highlight mode is window or app.",
	}, s.handleSetDimming)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_dimming",
		Description: "Toggle dimming on or off. Turning dimming back on restores the last non-off style. Returns the resulting style.",
	}, s.handleToggleDimming)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the displays the daemon is dimming, with geometry and the primary marker.",
	}, s.handleListDisplays)
}
