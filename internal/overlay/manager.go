// Package overlay manages the dimming surfaces, one per display. The
// manager owns surface lifecycle, fade animation, and the translation of
// screen-space cutouts into per-surface fill geometry.
package overlay

import (
	"fmt"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/mask"
	"github.com/dimveil/dimveil/internal/platform"
)

// fadeTick is the fade animation frame interval.
const fadeTick = 16 * time.Millisecond

// Settings are the appearance parameters shared by every surface.
type Settings struct {
	// DimEnabled engages the dim fill; without it the surfaces stay fully
	// transparent even while shown.
	DimEnabled bool
	// BlurEnabled engages the backdrop blur behind the fill region.
	BlurEnabled bool
	// Intensity is the dim strength in [0, 1]; the surface opacity at the
	// end of a fade-in.
	Intensity float64
	// Color is the dim fill color.
	Color colorful.Color
	// BlurAmount drives the backdrop blur curve in [0, 1]; 0 disables it.
	BlurAmount float64
	// CornerRadius rounds the window cutouts, in pixels.
	CornerRadius int
	// FadeDuration is the show/hide animation length.
	FadeDuration time.Duration
	// ReduceMotion makes every transition instant.
	ReduceMotion bool
}

// Manager coordinates one dimming surface per display.
//
// All methods are safe for concurrent use. The fade animation runs on its
// own goroutine; a generation counter cancels a running fade the moment a
// newer transition starts.
type Manager struct {
	backend platform.Backend

	mu       sync.Mutex
	surfaces map[int]*surfaceState
	settings Settings
	cutouts  []mask.RoundedRect
	visible  bool
	fade     float64
	fadeGen  int
}

type surfaceState struct {
	display platform.Display
	surface platform.Surface
}

// NewManager creates a manager over the given backend. Surfaces are created
// lazily on the first Show.
func NewManager(backend platform.Backend, settings Settings) *Manager {
	return &Manager{
		backend:  backend,
		surfaces: make(map[int]*surfaceState),
		settings: settings,
	}
}

// Visible reports whether the surfaces are shown or fading in.
func (m *Manager) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Show maps every surface and fades it to the configured intensity.
// Showing an already visible manager is a no-op, including mid fade-in.
func (m *Manager) Show() error {
	m.mu.Lock()
	if m.visible {
		m.mu.Unlock()
		return nil
	}
	if err := m.ensureSurfacesLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.visible = true
	m.applyMaskLocked()
	m.applyColorLocked()
	m.applyOpacityLocked()
	for _, s := range m.surfaces {
		s.surface.Show()
	}
	m.mu.Unlock()

	m.startFade(1, nil)
	return nil
}

// Hide fades the surfaces out and unmaps them. Hiding an already hidden
// manager is a no-op.
func (m *Manager) Hide() {
	m.mu.Lock()
	if !m.visible {
		m.mu.Unlock()
		return
	}
	m.visible = false
	m.mu.Unlock()

	m.startFade(0, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.visible {
			// A Show raced the fade-out; leave the surfaces mapped.
			return
		}
		for _, s := range m.surfaces {
			s.surface.Hide()
		}
	})
}

// UpdateMask replaces the screen-space cutouts and recomputes every
// surface's fill geometry. Cutouts outside a display are dropped for that
// display; straddling cutouts are clipped per display.
func (m *Manager) UpdateMask(cutouts []mask.RoundedRect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutouts = cutouts
	if m.visible {
		m.applyMaskLocked()
	}
}

// Apply updates the appearance settings, propagating color, opacity, and
// blur changes to visible surfaces immediately.
func (m *Manager) Apply(settings Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	colorChanged := settings.Color != m.settings.Color
	maskChanged := settings.BlurAmount != m.settings.BlurAmount ||
		settings.CornerRadius != m.settings.CornerRadius ||
		settings.BlurEnabled != m.settings.BlurEnabled
	m.settings = settings
	if !m.visible {
		return
	}
	if colorChanged {
		m.applyColorLocked()
	}
	if maskChanged {
		m.applyMaskLocked()
	}
	m.applyOpacityLocked()
}

// Settings returns the current appearance settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// ReconcileDisplays re-enumerates displays and creates, moves, or destroys
// surfaces to match. Safe to call on hot-plug events and periodically.
func (m *Manager) ReconcileDisplays() error {
	displays, err := m.backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool, len(displays))
	for _, d := range displays {
		seen[d.ID] = true
		state, ok := m.surfaces[d.ID]
		if !ok {
			if !m.visible && len(m.surfaces) == 0 {
				// Surfaces are created lazily; nothing to reconcile yet.
				continue
			}
			surface, err := m.backend.CreateSurface(d)
			if err != nil {
				return fmt.Errorf("failed to create surface for display %d: %w", d.ID, err)
			}
			state = &surfaceState{display: d, surface: surface}
			m.surfaces[d.ID] = state
			if m.visible {
				surface.Show()
			}
		} else if state.display.Bounds != d.Bounds {
			state.display = d
			if err := state.surface.SetGeometry(d.Bounds); err != nil {
				return fmt.Errorf("failed to resize surface for display %d: %w", d.ID, err)
			}
		} else {
			state.display = d
		}
	}

	for id, state := range m.surfaces {
		if !seen[id] {
			state.surface.Destroy()
			delete(m.surfaces, id)
		}
	}

	if m.visible {
		m.applyMaskLocked()
		m.applyColorLocked()
		m.applyOpacityLocked()
	}
	return nil
}

// SurfaceCount returns the number of live surfaces.
func (m *Manager) SurfaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.surfaces)
}

// Close destroys every surface.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fadeGen++
	for id, state := range m.surfaces {
		state.surface.Destroy()
		delete(m.surfaces, id)
	}
	m.visible = false
	m.fade = 0
}

func (m *Manager) ensureSurfacesLocked() error {
	displays, err := m.backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}
	seen := make(map[int]bool, len(displays))
	for _, d := range displays {
		seen[d.ID] = true
		if state, ok := m.surfaces[d.ID]; ok {
			state.display = d
			continue
		}
		surface, err := m.backend.CreateSurface(d)
		if err != nil {
			return fmt.Errorf("failed to create surface for display %d: %w", d.ID, err)
		}
		m.surfaces[d.ID] = &surfaceState{display: d, surface: surface}
	}
	for id, state := range m.surfaces {
		if !seen[id] {
			state.surface.Destroy()
			delete(m.surfaces, id)
		}
	}
	return nil
}

// applyMaskLocked recomputes the fill geometry for every surface from the
// current screen-space cutouts.
func (m *Manager) applyMaskLocked() {
	blur := mask.Blur(m.settings.BlurAmount)
	if !m.settings.BlurEnabled {
		blur = mask.BlurParams{Hidden: true}
	}
	blurOK := m.backend.BlurSupported()

	for _, s := range m.surfaces {
		bounds := s.display.Bounds
		local := make([]mask.RoundedRect, 0, len(m.cutouts))
		for _, c := range m.cutouts {
			if !geometry.Intersects(c.Rect, bounds) {
				continue
			}
			clipped := geometry.Intersect(c.Rect, bounds)
			local = append(local, mask.RoundedRect{
				Rect:   clipped.Translate(-bounds.X, -bounds.Y),
				Radius: c.Radius,
			})
		}

		surfaceBounds := mask.RoundedRect{
			Rect: geometry.Rect{Width: bounds.Width, Height: bounds.Height},
		}
		fill := mask.Fill(surfaceBounds, local)
		s.surface.SetFill(fill)
		if blurOK {
			s.surface.SetBlur(blur, fill)
		}
	}
}

func (m *Manager) applyColorLocked() {
	for _, s := range m.surfaces {
		s.surface.SetColor(m.settings.Color)
	}
}

// applyOpacityLocked pushes intensity scaled by fade progress, so a fade
// ramps toward whatever intensity is configured at each frame. With the dim
// bit off the fill stays transparent regardless of intensity.
func (m *Manager) applyOpacityLocked() {
	intensity := 0.0
	if m.settings.DimEnabled {
		intensity = m.settings.Intensity
	}
	for _, s := range m.surfaces {
		s.surface.SetOpacity(intensity * m.fade)
	}
}

// startFade animates fade progress to target. A newer fade, or Close,
// cancels it between frames.
func (m *Manager) startFade(target float64, onDone func()) {
	m.mu.Lock()
	m.fadeGen++
	gen := m.fadeGen
	from := m.fade
	duration := m.settings.FadeDuration
	instant := m.settings.ReduceMotion || duration <= 0 || from == target
	if instant {
		m.fade = target
		m.applyOpacityLocked()
	}
	m.mu.Unlock()

	if instant {
		if onDone != nil {
			onDone()
		}
		return
	}

	go func() {
		ticker := time.NewTicker(fadeTick)
		defer ticker.Stop()
		start := time.Now()

		for range ticker.C {
			t := float64(time.Since(start)) / float64(duration)
			done := t >= 1
			if done {
				t = 1
			}

			m.mu.Lock()
			if m.fadeGen != gen {
				m.mu.Unlock()
				return
			}
			m.fade = from + (target-from)*smoothstep(t)
			m.applyOpacityLocked()
			m.mu.Unlock()

			if done {
				if onDone != nil {
					onDone()
				}
				return
			}
		}
	}()
}

// smoothstep eases a linear 0..1 progress with zero velocity at both ends.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
