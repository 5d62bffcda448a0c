package mcp

// GetDimmingStatusInput is the input for the get_dimming_status tool.
type GetDimmingStatusInput struct{}

// GetDimmingStatusOutput is the output for the get_dimming_status tool.
type GetDimmingStatusOutput struct {
	Style         string  `json:"style"`
	Visible       bool    `json:"visible"`
	Intensity     float64 `json:"intensity"`
	Color         string  `json:"color"`
	BlurAmount    float64 `json:"blur_amount"`
	HighlightMode string  `json:"highlight_mode"`
	Overridden    bool    `json:"overridden"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// SetDimmingInput is the input for the set_dimming tool. Every field is
// optional; only the fields present are applied.
type SetDimmingInput struct {
	Style         string   `json:"style,omitempty" jsonschema:"Dimming style: off, dim, blur, or dim+blur"`
	Intensity     *float64 `json:"intensity,omitempty" jsonschema:"Dim strength in [0, 1]"`
	Color         string   `json:"color,omitempty" jsonschema:"Dim color as a hex string, e.g. #000000"`
	BlurAmount    *float64 `json:"blur_amount,omitempty" jsonschema:"Backdrop blur strength in [0, 1]; 0 disables"`
	HighlightMode string   `json:"highlight_mode,omitempty" jsonschema:"Which windows stay undimmed: window (focused window only) or app (all windows of the active application)"`
}

// SetDimmingOutput is the output for the set_dimming tool.
type SetDimmingOutput struct {
	Applied []string `json:"applied"`
}

// ToggleDimmingInput is the input for the toggle_dimming tool.
type ToggleDimmingInput struct{}

// ToggleDimmingOutput is the output for the toggle_dimming tool.
type ToggleDimmingOutput struct {
	Style string `json:"style"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayEntry describes a single display.
type DisplayEntry struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayEntry `json:"displays"`
}
