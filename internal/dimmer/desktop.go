package dimmer

import (
	"sync"
)

// FocusSource is the slice of the platform backend the desktop watcher
// needs.
type FocusSource interface {
	DesktopFocused() (bool, error)
	WatchActiveWindow(fn func()) error
}

// DesktopWatch turns focus changes into desktop-active override edges. It
// runs independently of the tracker: the tracker stops whenever style goes
// off, but leaving the desktop must still end the override, so this watch
// never stops.
type DesktopWatch struct {
	source FocusSource
	coord  *Coordinator

	mu     sync.Mutex
	active bool
}

// NewDesktopWatch creates the watcher; call Start to begin observing.
func NewDesktopWatch(source FocusSource, coord *Coordinator) *DesktopWatch {
	return &DesktopWatch{source: source, coord: coord}
}

// Start registers the focus watch and evaluates the current state once.
func (w *DesktopWatch) Start() error {
	if err := w.source.WatchActiveWindow(w.check); err != nil {
		return err
	}
	w.check()
	return nil
}

// check edge-detects desktop focus and drives the override slot. Repeated
// notifications at the same level are ignored.
func (w *DesktopWatch) check() {
	desktop, err := w.source.DesktopFocused()
	if err != nil {
		return
	}

	w.mu.Lock()
	changed := desktop != w.active
	w.active = desktop
	w.mu.Unlock()
	if !changed {
		return
	}

	if desktop {
		w.coord.ActivateOverride(OverrideDesktopActive)
	} else {
		w.coord.DeactivateOverride(OverrideDesktopActive)
	}
}
