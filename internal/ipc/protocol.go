package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/dimveil/dimveil/internal/dimmer"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload           CommandType = "RELOAD"
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandGetDisplays      CommandType = "GET_DISPLAYS"
	CommandToggle           CommandType = "TOGGLE"
	CommandSetStyle         CommandType = "SET_STYLE"
	CommandSetIntensity     CommandType = "SET_INTENSITY"
	CommandSetColor         CommandType = "SET_COLOR"
	CommandSetBlur          CommandType = "SET_BLUR"
	CommandSetHighlightMode CommandType = "SET_HIGHLIGHT_MODE"
)

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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	dimmer.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// ToggleData represents the data returned by TOGGLE
type ToggleData struct {
	Style string `json:"style"`
}

type SetStylePayload struct {
	Style string `json:"style"`
}

type SetIntensityPayload struct {
	Intensity float64 `json:"intensity"`
}

type SetColorPayload struct {
	Color string `json:"color"`
}

type SetBlurPayload struct {
	Amount float64 `json:"amount"`
}

type SetHighlightModePayload struct {
	Mode string `json:"mode"`
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
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
