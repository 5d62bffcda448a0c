package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dimveil/dimveil/internal/dimmer"
	"github.com/dimveil/dimveil/internal/tracker"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ParsedStyle() != dimmer.StyleDimOnly {
		t.Errorf("default style = %v, want dim", cfg.ParsedStyle())
	}
	if cfg.ParsedMode() != tracker.ModeSingleWindow {
		t.Errorf("default mode = %v, want window", cfg.ParsedMode())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad style", func(c *Config) { c.Style = "sepia" }, "style"},
		{"intensity too high", func(c *Config) { c.Intensity = 1.5 }, "intensity"},
		{"negative intensity", func(c *Config) { c.Intensity = -0.1 }, "intensity"},
		{"bad color", func(c *Config) { c.Color = "notacolor" }, "color"},
		{"blur out of range", func(c *Config) { c.BlurAmount = 2 }, "blur_amount"},
		{"animation too long", func(c *Config) { c.AnimationDuration = 3 }, "animation_duration"},
		{"bad highlight mode", func(c *Config) { c.HighlightMode = "screen" }, "highlight_mode"},
		{"negative corner radius", func(c *Config) { c.CornerRadius = -1 }, "corner_radius"},
		{"empty excluded app", func(c *Config) { c.ExcludedApps = []string{"mpv", " "} }, "excluded_apps"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate accepted %s", tc.name)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if verr.Path != tc.path {
				t.Errorf("error path = %q, want %q", verr.Path, tc.path)
			}
		})
	}
}

func TestLoadFromPathMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	def := DefaultConfig()
	if cfg.Style != def.Style || cfg.Intensity != def.Intensity || cfg.Color != def.Color {
		t.Errorf("missing file config = %+v, want defaults", cfg)
	}
}

func TestLoadFromPathOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
style: dim+blur
intensity: 0.8
color: "#1a1a2e"
blur_amount: 0.4
animation_duration: 0.5
highlight_mode: app
excluded_apps: [mpv, vlc]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.ParsedStyle() != dimmer.StyleDimAndBlur {
		t.Errorf("style = %v, want dim+blur", cfg.ParsedStyle())
	}
	if cfg.Intensity != 0.8 || cfg.BlurAmount != 0.4 {
		t.Errorf("intensity/blur = %v/%v", cfg.Intensity, cfg.BlurAmount)
	}
	if cfg.ParsedMode() != tracker.ModeAllAppWindows {
		t.Errorf("mode = %v, want app", cfg.ParsedMode())
	}
	if len(cfg.ExcludedApps) != 2 {
		t.Errorf("excluded apps = %v", cfg.ExcludedApps)
	}
	// Untouched fields keep their defaults.
	if cfg.CornerRadius != DefaultConfig().CornerRadius {
		t.Errorf("corner radius = %d, want default", cfg.CornerRadius)
	}
	if cfg.ToggleHotkey != DefaultConfig().ToggleHotkey {
		t.Errorf("toggle hotkey = %q, want default", cfg.ToggleHotkey)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("intensity: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("invalid config loaded without error")
	}
}

func TestOverlaySettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Intensity = 0.7
	cfg.Color = "#336699"
	cfg.AnimationDuration = 0.5

	s := cfg.OverlaySettings()
	if s.Intensity != 0.7 {
		t.Errorf("intensity = %v", s.Intensity)
	}
	if s.FadeDuration != 500*time.Millisecond {
		t.Errorf("fade duration = %v, want 500ms", s.FadeDuration)
	}
	if got := s.Color.Hex(); got != "#336699" {
		t.Errorf("color = %q, want #336699", got)
	}
	if s.DimEnabled || s.BlurEnabled {
		t.Errorf("style flags set by config: %+v", s)
	}
}
