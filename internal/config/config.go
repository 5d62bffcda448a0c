// Package config loads and validates the dimveil configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/dimmer"
	"github.com/dimveil/dimveil/internal/overlay"
	"github.com/dimveil/dimveil/internal/tracker"
)

// Config is the effective configuration. Values are clamped and validated
// here; downstream components trust them as-is.
type Config struct {
	// Style is the startup dimming style: off, dim, blur, or dim+blur.
	Style string `yaml:"style"`
	// Intensity is the dim strength in [0, 1].
	Intensity float64 `yaml:"intensity"`
	// Color is the dim fill color as a hex string, e.g. "#000000".
	Color string `yaml:"color"`
	// BlurAmount is the backdrop blur strength in [0, 1]; 0 disables.
	BlurAmount float64 `yaml:"blur_amount"`
	// AnimationDuration is the fade length in seconds, in [0, 2].
	AnimationDuration float64 `yaml:"animation_duration"`
	// HighlightMode is "window" (focused window only) or "app" (all
	// windows of the active application).
	HighlightMode string `yaml:"highlight_mode"`
	// ReduceMotion makes every transition instantaneous.
	ReduceMotion bool `yaml:"reduce_motion"`
	// CornerRadius rounds the window cutouts, in pixels.
	CornerRadius int `yaml:"corner_radius"`
	// ExcludedApps lists application classes that are never dimmed around;
	// activating one suspends cutout tracking entirely.
	ExcludedApps []string `yaml:"excluded_apps"`
	// ToggleHotkey toggles dimming on and off. Empty disables the binding.
	ToggleHotkey string `yaml:"toggle_hotkey"`
	// RevealHotkey suspends dimming while held. Empty disables the binding.
	RevealHotkey string `yaml:"reveal_hotkey"`
	// LogLevel is one of debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
}

// ValidationError reports an invalid config value by its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func DefaultConfig() *Config {
	return &Config{
		Style:             "dim",
		Intensity:         0.5,
		Color:             "#000000",
		BlurAmount:        0,
		AnimationDuration: 0.25,
		HighlightMode:     "window",
		CornerRadius:      12,
		ExcludedApps:      []string{},
		ToggleHotkey:      "Mod4-Mod1-d",
		RevealHotkey:      "Mod4-Mod1-v",
		LogLevel:          "info",
	}
}

// Validate checks every field, returning a ValidationError for the first
// invalid one.
func (c *Config) Validate() error {
	if _, err := dimmer.ParseStyle(c.Style); err != nil {
		return &ValidationError{Path: "style", Err: err}
	}
	if c.Intensity < 0 || c.Intensity > 1 {
		return &ValidationError{Path: "intensity", Err: fmt.Errorf("intensity must be in [0, 1]")}
	}
	if _, err := colorful.Hex(c.Color); err != nil {
		return &ValidationError{Path: "color", Err: fmt.Errorf("color must be a hex string like #1a1a2e: %w", err)}
	}
	if c.BlurAmount < 0 || c.BlurAmount > 1 {
		return &ValidationError{Path: "blur_amount", Err: fmt.Errorf("blur_amount must be in [0, 1]")}
	}
	if c.AnimationDuration < 0 || c.AnimationDuration > 2 {
		return &ValidationError{Path: "animation_duration", Err: fmt.Errorf("animation_duration must be in [0, 2] seconds")}
	}
	if _, err := tracker.ParseMode(c.HighlightMode); err != nil {
		return &ValidationError{Path: "highlight_mode", Err: err}
	}
	if c.CornerRadius < 0 {
		return &ValidationError{Path: "corner_radius", Err: fmt.Errorf("corner_radius must be >= 0")}
	}
	for _, app := range c.ExcludedApps {
		if strings.TrimSpace(app) == "" {
			return &ValidationError{Path: "excluded_apps", Err: fmt.Errorf("excluded_apps contains an empty entry")}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// ParsedStyle returns the startup style. Call Validate first.
func (c *Config) ParsedStyle() dimmer.Style {
	style, _ := dimmer.ParseStyle(c.Style)
	return style
}

// ParsedMode returns the highlight mode. Call Validate first.
func (c *Config) ParsedMode() tracker.Mode {
	mode, _ := tracker.ParseMode(c.HighlightMode)
	return mode
}

// ParsedColor returns the dim fill color. Call Validate first.
func (c *Config) ParsedColor() colorful.Color {
	col, _ := colorful.Hex(c.Color)
	return col
}

// OverlaySettings builds the surface appearance from the config. The
// Dim/Blur enablement flags are owned by the coordinator and left unset.
func (c *Config) OverlaySettings() overlay.Settings {
	return overlay.Settings{
		Intensity:    c.Intensity,
		Color:        c.ParsedColor(),
		BlurAmount:   c.BlurAmount,
		CornerRadius: c.CornerRadius,
		FadeDuration: time.Duration(c.AnimationDuration * float64(time.Second)),
		ReduceMotion: c.ReduceMotion,
	}
}
