package overlay

import (
	"sync"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/mask"
	"github.com/dimveil/dimveil/internal/platform"
)

type fakeSurface struct {
	mu        sync.Mutex
	display   platform.Display
	shown     bool
	destroyed bool
	opacities []float64
	fills     [][]geometry.Rect
	colors    []colorful.Color
	blurs     []mask.BlurParams
	bounds    geometry.Rect
}

func (s *fakeSurface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = true
}

func (s *fakeSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = false
}

func (s *fakeSurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *fakeSurface) SetGeometry(bounds geometry.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = bounds
	return nil
}

func (s *fakeSurface) SetFill(rects []geometry.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills = append(s.fills, rects)
	return nil
}

func (s *fakeSurface) SetOpacity(opacity float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opacities = append(s.opacities, opacity)
	return nil
}

func (s *fakeSurface) SetColor(c colorful.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = append(s.colors, c)
	return nil
}

func (s *fakeSurface) SetBlur(params mask.BlurParams, rects []geometry.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blurs = append(s.blurs, params)
	return nil
}

func (s *fakeSurface) lastOpacity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.opacities) == 0 {
		return -1
	}
	return s.opacities[len(s.opacities)-1]
}

func (s *fakeSurface) lastFill() []geometry.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fills) == 0 {
		return nil
	}
	return s.fills[len(s.fills)-1]
}

type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	surfaces []*fakeSurface
	blurOK   bool
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platform.Display, len(b.displays))
	copy(out, b.displays)
	return out, nil
}

func (b *fakeBackend) ActiveWindow() (platform.Window, bool, error) {
	return platform.Window{}, false, nil
}

func (b *fakeBackend) ListWindows() ([]platform.Window, error) { return nil, nil }
func (b *fakeBackend) DesktopFocused() (bool, error)           { return false, nil }

func (b *fakeBackend) CreateSurface(d platform.Display) (platform.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &fakeSurface{display: d, bounds: d.Bounds}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

func (b *fakeBackend) BlurSupported() bool                        { return b.blurOK }
func (b *fakeBackend) WatchActiveWindow(func()) error             { return nil }
func (b *fakeBackend) WatchWindowList(func()) error               { return nil }
func (b *fakeBackend) WatchWindow(platform.WindowID, func()) error { return nil }
func (b *fakeBackend) UnwatchWindow(platform.WindowID)            {}
func (b *fakeBackend) WatchDisplays(func()) error                 { return nil }
func (b *fakeBackend) Run()                                       {}
func (b *fakeBackend) Quit()                                      {}
func (b *fakeBackend) Close()                                     {}

func (b *fakeBackend) surfaceFor(displayID int) *fakeSurface {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.surfaces {
		if s.display.ID == displayID && !s.destroyed {
			return s
		}
	}
	return nil
}

func twoDisplays() []platform.Display {
	return []platform.Display{
		{ID: 0, Name: "eDP-1", Primary: true, Bounds: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Name: "HDMI-1", Bounds: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}},
	}
}

func instantSettings() Settings {
	return Settings{
		DimEnabled:   true,
		Intensity:    0.6,
		Color:        colorful.Color{},
		ReduceMotion: true,
	}
}

func fillArea(rects []geometry.Rect) int {
	total := 0
	for _, r := range rects {
		total += r.Width * r.Height
	}
	return total
}

func TestShowCreatesSurfacePerDisplay(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())

	if err := m.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got := m.SurfaceCount(); got != 2 {
		t.Fatalf("surface count = %d, want 2", got)
	}
	for _, id := range []int{0, 1} {
		s := backend.surfaceFor(id)
		if s == nil {
			t.Fatalf("no surface for display %d", id)
		}
		if !s.shown {
			t.Errorf("surface %d not shown", id)
		}
		if got := s.lastOpacity(); got != 0.6 {
			t.Errorf("surface %d opacity = %v, want 0.6", id, got)
		}
	}
}

func TestShowIdempotent(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())

	m.Show()
	m.Show()
	if got := m.SurfaceCount(); got != 2 {
		t.Fatalf("surface count after double Show = %d, want 2", got)
	}
}

func TestHideUnmapsWithoutDestroying(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())

	m.Show()
	m.Hide()
	m.Hide()

	if m.Visible() {
		t.Fatalf("manager still visible after Hide")
	}
	if got := m.SurfaceCount(); got != 2 {
		t.Fatalf("surfaces destroyed on Hide: count = %d", got)
	}
	for _, id := range []int{0, 1} {
		s := backend.surfaceFor(id)
		if s.shown {
			t.Errorf("surface %d still shown", id)
		}
		if got := s.lastOpacity(); got != 0 {
			t.Errorf("surface %d opacity = %v, want 0", id, got)
		}
	}
}

func TestUpdateMaskClipsCutoutsPerDisplay(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())
	m.Show()

	// A window straddling both displays: 120px on the first, 280px on the
	// second.
	m.UpdateMask([]mask.RoundedRect{
		{Rect: geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300}},
	})

	full := 1920 * 1080
	if got, want := fillArea(backend.surfaceFor(0).lastFill()), full-120*300; got != want {
		t.Errorf("display 0 fill area = %d, want %d", got, want)
	}
	if got, want := fillArea(backend.surfaceFor(1).lastFill()), full-280*300; got != want {
		t.Errorf("display 1 fill area = %d, want %d", got, want)
	}
}

func TestUpdateMaskDropsCutoutsOutsideDisplay(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())
	m.Show()

	m.UpdateMask([]mask.RoundedRect{
		{Rect: geometry.Rect{X: 2000, Y: 100, Width: 400, Height: 300}},
	})

	fill := backend.surfaceFor(0).lastFill()
	if len(fill) != 1 || fill[0] != (geometry.Rect{Width: 1920, Height: 1080}) {
		t.Errorf("display 0 fill = %v, want full bounds", fill)
	}
}

func TestUpdateMaskWhileHiddenDeferred(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())

	m.UpdateMask([]mask.RoundedRect{
		{Rect: geometry.Rect{X: 100, Y: 100, Width: 200, Height: 200}},
	})
	if len(backend.surfaces) != 0 {
		t.Fatalf("surfaces created before Show")
	}

	m.Show()
	full := 1920 * 1080
	if got, want := fillArea(backend.surfaceFor(0).lastFill()), full-200*200; got != want {
		t.Errorf("fill area after Show = %d, want %d", got, want)
	}
}

func TestApplyPropagatesToVisibleSurfaces(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())
	m.Show()

	next := instantSettings()
	next.Intensity = 0.9
	next.Color = colorful.Color{R: 0.1, G: 0.2, B: 0.3}
	m.Apply(next)

	s := backend.surfaceFor(0)
	if got := s.lastOpacity(); got != 0.9 {
		t.Errorf("opacity after Apply = %v, want 0.9", got)
	}
	s.mu.Lock()
	gotColor := s.colors[len(s.colors)-1]
	s.mu.Unlock()
	if gotColor != next.Color {
		t.Errorf("color after Apply = %v, want %v", gotColor, next.Color)
	}
}

func TestBlurFollowsCapability(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	settings := instantSettings()
	settings.BlurEnabled = true
	settings.BlurAmount = 0.5
	m := NewManager(backend, settings)
	m.Show()
	m.UpdateMask(nil)

	s := backend.surfaceFor(0)
	s.mu.Lock()
	blurCalls := len(s.blurs)
	s.mu.Unlock()
	if blurCalls != 0 {
		t.Fatalf("blur applied without compositor support")
	}

	backend2 := &fakeBackend{displays: twoDisplays(), blurOK: true}
	m2 := NewManager(backend2, settings)
	m2.Show()

	s2 := backend2.surfaceFor(0)
	s2.mu.Lock()
	defer s2.mu.Unlock()
	if len(s2.blurs) == 0 {
		t.Fatalf("blur not applied with compositor support")
	}
	if got := s2.blurs[len(s2.blurs)-1]; got.Hidden {
		t.Errorf("blur hidden at amount 0.5: %+v", got)
	}
}

func TestStyleBitsGateFillAndBlur(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays(), blurOK: true}
	settings := instantSettings()
	settings.DimEnabled = false
	settings.BlurEnabled = false
	settings.BlurAmount = 0.5
	m := NewManager(backend, settings)
	m.Show()

	s := backend.surfaceFor(0)
	if got := s.lastOpacity(); got != 0 {
		t.Errorf("opacity with dim bit off = %v, want 0", got)
	}
	s.mu.Lock()
	lastBlur := s.blurs[len(s.blurs)-1]
	s.mu.Unlock()
	if !lastBlur.Hidden {
		t.Errorf("blur applied with blur bit off: %+v", lastBlur)
	}

	settings.DimEnabled = true
	settings.BlurEnabled = true
	m.Apply(settings)
	if got := s.lastOpacity(); got != settings.Intensity {
		t.Errorf("opacity after enabling dim = %v, want %v", got, settings.Intensity)
	}
	s.mu.Lock()
	lastBlur = s.blurs[len(s.blurs)-1]
	s.mu.Unlock()
	if lastBlur.Hidden {
		t.Errorf("blur still hidden after enabling blur bit")
	}
}

func TestReconcileDisplaysAddsAndRemoves(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())
	m.Show()

	gone := backend.surfaceFor(1)

	backend.mu.Lock()
	backend.displays = []platform.Display{
		backend.displays[0],
		{ID: 2, Name: "DP-2", Bounds: geometry.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}
	backend.mu.Unlock()

	if err := m.ReconcileDisplays(); err != nil {
		t.Fatalf("ReconcileDisplays: %v", err)
	}

	if got := m.SurfaceCount(); got != 2 {
		t.Fatalf("surface count after reconcile = %d, want 2", got)
	}
	gone.mu.Lock()
	destroyed := gone.destroyed
	gone.mu.Unlock()
	if !destroyed {
		t.Errorf("surface for unplugged display not destroyed")
	}
	added := backend.surfaceFor(2)
	if added == nil {
		t.Fatalf("no surface for new display")
	}
	if !added.shown {
		t.Errorf("surface for new display not shown while visible")
	}
}

func TestReconcileDisplaysResizes(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	m := NewManager(backend, instantSettings())
	m.Show()

	resized := geometry.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	backend.mu.Lock()
	backend.displays[1].Bounds = resized
	backend.mu.Unlock()

	if err := m.ReconcileDisplays(); err != nil {
		t.Fatalf("ReconcileDisplays: %v", err)
	}

	s := backend.surfaceFor(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bounds != resized {
		t.Errorf("surface bounds = %v, want %v", s.bounds, resized)
	}
	if s.destroyed {
		t.Errorf("resized surface was destroyed instead of moved")
	}
}

func TestFadeRampsOpacity(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	settings := instantSettings()
	settings.ReduceMotion = false
	settings.FadeDuration = 40 * time.Millisecond
	m := NewManager(backend, settings)

	m.Show()
	time.Sleep(200 * time.Millisecond)

	s := backend.surfaceFor(0)
	s.mu.Lock()
	opacities := append([]float64(nil), s.opacities...)
	s.mu.Unlock()

	if len(opacities) < 2 {
		t.Fatalf("fade produced %d opacity updates, want several", len(opacities))
	}
	if got := opacities[len(opacities)-1]; got != settings.Intensity {
		t.Fatalf("final opacity = %v, want %v", got, settings.Intensity)
	}
	for i := 1; i < len(opacities); i++ {
		if opacities[i] < opacities[i-1] {
			t.Fatalf("fade-in opacity decreased: %v", opacities)
		}
	}
}

func TestShowCancelsRunningFadeOut(t *testing.T) {
	backend := &fakeBackend{displays: twoDisplays()}
	settings := instantSettings()
	settings.ReduceMotion = false
	settings.FadeDuration = 60 * time.Millisecond
	m := NewManager(backend, settings)

	m.Show()
	time.Sleep(100 * time.Millisecond)
	m.Hide()
	time.Sleep(10 * time.Millisecond)
	m.Show()
	time.Sleep(200 * time.Millisecond)

	if !m.Visible() {
		t.Fatalf("manager not visible after Show during fade-out")
	}
	s := backend.surfaceFor(0)
	if !s.shown {
		t.Fatalf("surface unmapped by stale fade-out")
	}
	if got := s.lastOpacity(); got != settings.Intensity {
		t.Fatalf("final opacity = %v, want %v", got, settings.Intensity)
	}
}
