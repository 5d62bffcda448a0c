package dimmer

import (
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/mask"
	"github.com/dimveil/dimveil/internal/overlay"
	"github.com/dimveil/dimveil/internal/tracker"
)

// Surfaces is the slice of the overlay manager the coordinator drives.
type Surfaces interface {
	Show() error
	Hide()
	Apply(overlay.Settings)
	UpdateMask([]mask.RoundedRect)
}

// Observer is the slice of the active-window tracker the coordinator
// drives.
type Observer interface {
	Start() error
	Stop()
	SetMode(tracker.Mode)
	SetExcludedApps([]string)
	OnFrames(func([]geometry.Rect))
}

// OverrideSource names a transient condition that forces dimming off.
type OverrideSource int

const (
	// OverrideKeyHeld is the hold-to-reveal hotkey.
	OverrideKeyHeld OverrideSource = iota
	// OverrideDesktopActive is focus sitting on the desktop surface.
	OverrideDesktopActive

	overrideSourceCount
)

// overrideSlot is one source's state. A source saves at most one pending
// restoration; re-activating an already active source does nothing.
type overrideSlot struct {
	active   bool
	saved    Style
	hasSaved bool
}

// Status is a snapshot of the coordinator's state, handed out over IPC.
type Status struct {
	Style         string  `json:"style"`
	Visible       bool    `json:"visible"`
	Intensity     float64 `json:"intensity"`
	Color         string  `json:"color"`
	BlurAmount    float64 `json:"blur_amount"`
	HighlightMode string  `json:"highlight_mode"`
	Overridden    bool    `json:"overridden"`
}

// Coordinator is the reactive hub of the engine. It owns the style state
// machine and the override slots, and it is the only code path that shows
// or hides the surfaces or starts or stops the tracker.
//
// A single mutex serializes every mutation, so one settings change fully
// propagates to all surfaces before the next one is applied.
type Coordinator struct {
	surfaces Surfaces
	observer Observer

	mu         sync.Mutex
	style      Style
	remembered Style
	hasMemory  bool
	overrides  [overrideSourceCount]overrideSlot
	appearance overlay.Settings
	mode       tracker.Mode

	// cornerRadius mirrors appearance.CornerRadius for the frame callback,
	// which runs re-entrantly from observer.Start and must not take mu.
	cornerRadius atomic.Int32
}

// New wires a coordinator to its surfaces and observer and applies the
// initial style. The appearance's Dim/Blur flags are derived from style and
// ignored on input.
func New(surfaces Surfaces, observer Observer, style Style, appearance overlay.Settings, mode tracker.Mode) *Coordinator {
	c := &Coordinator{
		surfaces:   surfaces,
		observer:   observer,
		style:      style,
		appearance: appearance,
		mode:       mode,
	}
	observer.OnFrames(c.handleFrames)
	observer.SetMode(mode)

	c.mu.Lock()
	c.propagateLocked()
	c.mu.Unlock()
	return c
}

// Style returns the current style.
func (c *Coordinator) Style() Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

// SetStyle replaces the style and propagates.
func (c *Coordinator) SetStyle(style Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = style
	c.propagateLocked()
}

// SetDim sets the dim bit.
func (c *Coordinator) SetDim(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = c.style.WithDim(on)
	c.propagateLocked()
}

// SetBlur sets the blur bit.
func (c *Coordinator) SetBlur(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = c.style.WithBlur(on)
	c.propagateLocked()
}

// Toggle flips between off and the last non-off style. With no memory it
// enables dim-only.
func (c *Coordinator) Toggle() Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.style != StyleOff {
		c.remembered = c.style
		c.hasMemory = true
		c.style = StyleOff
	} else {
		if c.hasMemory {
			c.style = c.remembered
		} else {
			c.style = StyleDimOnly
		}
	}
	c.propagateLocked()
	return c.style
}

// ActivateOverride forces style off on behalf of a source, saving the
// current style for restoration. Activating an already active source, or
// activating while the engine is off, saves nothing.
func (c *Coordinator) ActivateOverride(src OverrideSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := &c.overrides[src]
	if slot.active {
		return
	}
	slot.active = true
	if c.style != StyleOff {
		slot.saved = c.style
		slot.hasSaved = true
		c.style = StyleOff
		c.propagateLocked()
	}
}

// DeactivateOverride ends a source's condition. A slot that saved nothing
// restores nothing, so when two sources overlap only the first activator
// holds the style to bring back.
func (c *Coordinator) DeactivateOverride(src OverrideSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := &c.overrides[src]
	if !slot.active {
		return
	}
	slot.active = false
	if slot.hasSaved {
		c.style = slot.saved
		slot.hasSaved = false
		c.propagateLocked()
	}
}

// Overridden reports whether any override source is active.
func (c *Coordinator) Overridden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.overrides {
		if c.overrides[i].active {
			return true
		}
	}
	return false
}

// SetIntensity updates the dim strength.
func (c *Coordinator) SetIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appearance.Intensity = v
	c.propagateLocked()
}

// SetColor updates the dim fill color.
func (c *Coordinator) SetColor(col colorful.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appearance.Color = col
	c.propagateLocked()
}

// SetBlurAmount updates the blur curve input.
func (c *Coordinator) SetBlurAmount(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appearance.BlurAmount = v
	c.propagateLocked()
}

// SetHighlightMode switches between single-window and all-app-windows
// cutouts.
func (c *Coordinator) SetHighlightMode(mode tracker.Mode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	c.observer.SetMode(mode)
}

// SetExcludedApps replaces the tracker's exclusion set.
func (c *Coordinator) SetExcludedApps(apps []string) {
	c.observer.SetExcludedApps(apps)
}

// ApplyAppearance replaces the full appearance in one propagation.
func (c *Coordinator) ApplyAppearance(appearance overlay.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appearance = appearance
	c.propagateLocked()
}

// Status returns a snapshot for IPC and tooling.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	overridden := false
	for i := range c.overrides {
		if c.overrides[i].active {
			overridden = true
		}
	}
	return Status{
		Style:         c.style.String(),
		Visible:       c.style != StyleOff,
		Intensity:     c.appearance.Intensity,
		Color:         c.appearance.Color.Hex(),
		BlurAmount:    c.appearance.BlurAmount,
		HighlightMode: c.mode.String(),
		Overridden:    overridden,
	}
}

// propagateLocked enforces the visibility invariant: surfaces shown and
// tracker observing iff style is not off. It also pushes the appearance
// with the style bits folded in.
func (c *Coordinator) propagateLocked() {
	c.cornerRadius.Store(int32(c.appearance.CornerRadius))

	s := c.appearance
	s.DimEnabled = c.style.Dim()
	s.BlurEnabled = c.style.Blur()
	c.surfaces.Apply(s)

	if c.style != StyleOff {
		c.surfaces.Show()
		c.observer.Start()
	} else {
		c.observer.Stop()
		c.surfaces.Hide()
	}
}

// handleFrames converts tracked frames into rounded cutouts and hands them
// to the surfaces. It can run re-entrantly from observer.Start inside a
// propagation, so it must not take mu.
func (c *Coordinator) handleFrames(frames []geometry.Rect) {
	radius := int(c.cornerRadius.Load())
	cutouts := make([]mask.RoundedRect, 0, len(frames))
	for _, f := range frames {
		cutouts = append(cutouts, mask.RoundedRect{Rect: f, Radius: radius})
	}
	c.surfaces.UpdateMask(cutouts)
}
