package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/dimveil/dimveil/internal/dimmer"
	"github.com/dimveil/dimveil/internal/platform"
	"github.com/dimveil/dimveil/internal/x11"
)

// Dimmer is the coordinator surface the hotkeys drive.
type Dimmer interface {
	Toggle() dimmer.Style
	ActivateOverride(src dimmer.OverrideSource)
	DeactivateOverride(src dimmer.OverrideSource)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	Connection() *x11.Connection
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	coord Dimmer
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. The backend must expose its X11
// connection; global grabs have no other registration path.
func NewHandler(backend platform.Backend, coord Dimmer) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("backend does not expose an X11 connection")
	}
	conn := accessor.Connection()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:    conn.XUtil,
		root:  conn.Root,
		coord: coord,
	}, nil
}

// RegisterToggle registers the dimming toggle hotkey.
func (h *Handler) RegisterToggle(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		style := h.coord.Toggle()
		log.Printf("Toggle hotkey: style now %s", style)
	})
}

// RegisterReveal registers the hold-to-reveal hotkey. Dimming drops while
// the key is held and returns when it is released.
func (h *Handler) RegisterReveal(keySequence string) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.coord.ActivateOverride(dimmer.OverrideKeyHeld)
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return err
	}

	return keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		h.coord.DeactivateOverride(dimmer.OverrideKeyHeld)
	}).Connect(h.xu, h.root, keySequence, true)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
