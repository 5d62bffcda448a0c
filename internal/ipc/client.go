package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dimveil/dimveil/internal/runtimepath"
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

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	req := &Request{
		Command: CommandGetDisplays,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var displays DisplaysData
	if err := json.Unmarshal(resp.Data, &displays); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}

	return &displays, nil
}

// Toggle flips dimming on or off and returns the resulting style name.
func (c *Client) Toggle() (string, error) {
	req := &Request{
		Command: CommandToggle,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return "", err
	}

	var data ToggleData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse toggle data: %w", err)
	}

	return data.Style, nil
}

// SetStyle sets the dimming style ("off", "dim", "blur" or "dim+blur").
func (c *Client) SetStyle(style string) error {
	payload, err := json.Marshal(SetStylePayload{Style: style})
	if err != nil {
		return fmt.Errorf("failed to marshal style payload: %w", err)
	}

	req := &Request{
		Command: CommandSetStyle,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetIntensity sets the dim strength in [0, 1].
func (c *Client) SetIntensity(intensity float64) error {
	payload, err := json.Marshal(SetIntensityPayload{Intensity: intensity})
	if err != nil {
		return fmt.Errorf("failed to marshal intensity payload: %w", err)
	}

	req := &Request{
		Command: CommandSetIntensity,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetColor sets the overlay tint as a hex string like "#1a1a2e".
func (c *Client) SetColor(hex string) error {
	payload, err := json.Marshal(SetColorPayload{Color: hex})
	if err != nil {
		return fmt.Errorf("failed to marshal color payload: %w", err)
	}

	req := &Request{
		Command: CommandSetColor,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetBlur sets the blur amount in [0, 1].
func (c *Client) SetBlur(amount float64) error {
	payload, err := json.Marshal(SetBlurPayload{Amount: amount})
	if err != nil {
		return fmt.Errorf("failed to marshal blur payload: %w", err)
	}

	req := &Request{
		Command: CommandSetBlur,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetHighlightMode sets which windows stay undimmed ("window" or "app").
func (c *Client) SetHighlightMode(mode string) error {
	payload, err := json.Marshal(SetHighlightModePayload{Mode: mode})
	if err != nil {
		return fmt.Errorf("failed to marshal highlight mode payload: %w", err)
	}

	req := &Request{
		Command: CommandSetHighlightMode,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
