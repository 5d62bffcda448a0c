package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGetDimmingStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetDimmingStatusInput) (*mcpsdk.CallToolResult, GetDimmingStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetDimmingStatusOutput{}, err
	}

	return nil, GetDimmingStatusOutput{
		Style:         status.Style,
		Visible:       status.Visible,
		Intensity:     status.Intensity,
		Color:         status.Color,
		BlurAmount:    status.BlurAmount,
		HighlightMode: status.HighlightMode,
		Overridden:    status.Overridden,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleSetDimming(_ context.Context, _ *mcpsdk.CallToolRequest, args SetDimmingInput) (*mcpsdk.CallToolResult, SetDimmingOutput, error) {
	var applied []string

	if args.Style != "" {
		if err := s.client.SetStyle(args.Style); err != nil {
			return nil, SetDimmingOutput{}, fmt.Errorf("set style: %w", err)
		}
		applied = append(applied, "style")
	}
	if args.Intensity != nil {
		if err := s.client.SetIntensity(*args.Intensity); err != nil {
			return nil, SetDimmingOutput{}, fmt.Errorf("set intensity: %w", err)
		}
		applied = append(applied, "intensity")
	}
	if args.Color != "" {
		if err := s.client.SetColor(args.Color); err != nil {
			return nil, SetDimmingOutput{}, fmt.Errorf("set color: %w", err)
		}
		applied = append(applied, "color")
	}
	if args.BlurAmount != nil {
		if err := s.client.SetBlur(*args.BlurAmount); err != nil {
			return nil, SetDimmingOutput{}, fmt.Errorf("set blur: %w", err)
		}
		applied = append(applied, "blur_amount")
	}
	if args.HighlightMode != "" {
		if err := s.client.SetHighlightMode(args.HighlightMode); err != nil {
			return nil, SetDimmingOutput{}, fmt.Errorf("set highlight mode: %w", err)
		}
		applied = append(applied, "highlight_mode")
	}

	if len(applied) == 0 {
		return nil, SetDimmingOutput{}, fmt.Errorf("no settings provided")
	}

	return nil, SetDimmingOutput{Applied: applied}, nil
}

func (s *Server) handleToggleDimming(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleDimmingInput) (*mcpsdk.CallToolResult, ToggleDimmingOutput, error) {
	style, err := s.client.Toggle()
	if err != nil {
		return nil, ToggleDimmingOutput{}, err
	}
	return nil, ToggleDimmingOutput{Style: style}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.client.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}

	out := ListDisplaysOutput{Displays: make([]DisplayEntry, len(data.Displays))}
	for i, d := range data.Displays {
		out.Displays[i] = DisplayEntry{
			ID:      d.ID,
			Name:    d.Name,
			X:       d.X,
			Y:       d.Y,
			Width:   d.Width,
			Height:  d.Height,
			Primary: d.Primary,
		}
	}
	return nil, out, nil
}
