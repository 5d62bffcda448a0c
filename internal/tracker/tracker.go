// Package tracker maintains the set of active window frames that are
// exempted from dimming. It follows focus changes and window geometry
// notifications from the platform backend and recomputes immediately on
// each, favoring responsiveness over coalescing.
package tracker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/platform"
)

// Mode selects which windows of the active application stay undimmed.
type Mode int

const (
	// ModeSingleWindow highlights only the focused window.
	ModeSingleWindow Mode = iota
	// ModeAllAppWindows highlights every window of the active application.
	ModeAllAppWindows
)

func (m Mode) String() string {
	switch m {
	case ModeSingleWindow:
		return "window"
	case ModeAllAppWindows:
		return "app"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a highlight mode name as used in config and IPC.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "window", "single":
		return ModeSingleWindow, nil
	case "app", "application":
		return ModeAllAppWindows, nil
	}
	return ModeSingleWindow, fmt.Errorf("unknown highlight mode %q (want \"window\" or \"app\")", s)
}

// Tracker is the active-window observer. Idle until Start; while observing
// it keeps per-window geometry watches on the active application's windows
// and re-emits frames on every notification.
//
// Callbacks fire without internal locks held, on whatever goroutine
// delivered the triggering event.
type Tracker struct {
	backend platform.Backend

	mu         sync.Mutex
	observing  bool
	registered bool
	mode       Mode
	excluded   map[string]bool
	watched    map[platform.WindowID]bool
	watchedApp string
	frames     []geometry.Rect

	onFrames func([]geometry.Rect)
}

// New creates a tracker in the Idle state.
func New(backend platform.Backend, mode Mode, excludedApps []string) *Tracker {
	t := &Tracker{
		backend: backend,
		mode:    mode,
		watched: make(map[platform.WindowID]bool),
	}
	t.setExcludedLocked(excludedApps)
	return t
}

// OnFrames registers the frame-update callback. Must be set before Start.
func (t *Tracker) OnFrames(fn func([]geometry.Rect)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFrames = fn
}

// Start moves the tracker to Observing and performs an immediate
// recomputation. Starting an observing tracker is a no-op.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.observing {
		t.mu.Unlock()
		return nil
	}
	t.observing = true
	register := !t.registered
	t.registered = true
	t.mu.Unlock()

	if register {
		// The focus and window-list watches stay registered for the
		// process lifetime; the handler ignores events while Idle.
		if err := t.backend.WatchActiveWindow(t.Refresh); err != nil {
			return fmt.Errorf("failed to watch active window: %w", err)
		}
		// Window creation has no per-window watch yet, so a new window of
		// the active application is only picked up through the list change.
		if err := t.backend.WatchWindowList(t.Refresh); err != nil {
			return fmt.Errorf("failed to watch window list: %w", err)
		}
	}

	t.Refresh()
	return nil
}

// Stop moves the tracker to Idle, synchronously detaching every per-window
// watch so no stale notification recomputes frames afterwards.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.observing {
		return
	}
	t.observing = false
	t.detachAllLocked()
	t.frames = nil
}

// Observing reports whether the tracker is in the Observing state.
func (t *Tracker) Observing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observing
}

// Frames returns the current active window set.
func (t *Tracker) Frames() []geometry.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]geometry.Rect, len(t.frames))
	copy(out, t.frames)
	return out
}

// SetMode switches the highlight mode and recomputes immediately.
func (t *Tracker) SetMode(mode Mode) {
	t.mu.Lock()
	changed := t.mode != mode
	t.mode = mode
	observing := t.observing
	t.mu.Unlock()
	if changed && observing {
		t.Refresh()
	}
}

// Mode returns the current highlight mode.
func (t *Tracker) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// SetExcludedApps replaces the exclusion set and recomputes immediately.
func (t *Tracker) SetExcludedApps(apps []string) {
	t.mu.Lock()
	t.setExcludedLocked(apps)
	observing := t.observing
	t.mu.Unlock()
	if observing {
		t.Refresh()
	}
}

func (t *Tracker) setExcludedLocked(apps []string) {
	t.excluded = make(map[string]bool, len(apps))
	for _, app := range apps {
		t.excluded[strings.ToLower(app)] = true
	}
}

// Refresh recomputes the active window set from current platform state.
// It is the handler for every tracked notification.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	if !t.observing {
		t.mu.Unlock()
		return
	}

	t.recomputeLocked()

	frames := make([]geometry.Rect, len(t.frames))
	copy(frames, t.frames)
	onFrames := t.onFrames
	t.mu.Unlock()

	if onFrames != nil {
		onFrames(frames)
	}
}

// recomputeLocked resolves the active window set and re-syncs per-window
// geometry watches to match.
func (t *Tracker) recomputeLocked() {
	win, ok, err := t.backend.ActiveWindow()
	if err != nil || !ok {
		// No qualifying window: dim undifferentiated, nothing to watch.
		t.detachAllLocked()
		t.frames = nil
		return
	}

	if t.excluded[strings.ToLower(win.AppID)] {
		// Excluded application: no cutouts and no observer attachment.
		t.detachAllLocked()
		t.frames = nil
		return
	}

	var (
		frames []geometry.Rect
		want   = make(map[platform.WindowID]bool)
	)

	switch t.mode {
	case ModeAllAppWindows:
		windows, err := t.backend.ListWindows()
		if err == nil {
			for _, w := range windows {
				if !strings.EqualFold(w.AppID, win.AppID) {
					continue
				}
				frames = append(frames, w.Frame)
				want[w.ID] = true
			}
		}
		if len(frames) == 0 {
			frames = []geometry.Rect{win.Frame}
			want[win.ID] = true
		}
	default:
		frames = []geometry.Rect{win.Frame}
		want[win.ID] = true
	}

	// Detach everything from a previous application before attaching to
	// the new one; within the same application only the delta changes.
	if !strings.EqualFold(t.watchedApp, win.AppID) {
		t.detachAllLocked()
	}
	for id := range t.watched {
		if !want[id] {
			t.backend.UnwatchWindow(id)
			delete(t.watched, id)
		}
	}
	for id := range want {
		if !t.watched[id] {
			if err := t.backend.WatchWindow(id, t.Refresh); err == nil {
				t.watched[id] = true
			}
		}
	}
	t.watchedApp = win.AppID
	t.frames = frames
}

func (t *Tracker) detachAllLocked() {
	for id := range t.watched {
		t.backend.UnwatchWindow(id)
		delete(t.watched, id)
	}
	t.watchedApp = ""
}
