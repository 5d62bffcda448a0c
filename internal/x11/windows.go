package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowInfo describes one managed client window, with its frame geometry
// in root coordinates.
type WindowInfo struct {
	ID     xproto.Window
	Class  string
	PID    int
	X      int
	Y      int
	Width  int
	Height int
}

// GetActiveWindow returns the focused window per _NET_ACTIVE_WINDOW.
// A zero window means nothing is focused.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ListWindows returns every managed client window with its class and frame
// geometry. Windows whose geometry cannot be resolved are skipped.
func (c *Connection) ListWindows() ([]WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	infos := make([]WindowInfo, 0, len(clients))
	for _, win := range clients {
		info, err := c.GetWindowInfo(win)
		if err != nil {
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// GetWindowInfo resolves the class, PID, and frame geometry of one window.
func (c *Connection) GetWindowInfo(windowID xproto.Window) (*WindowInfo, error) {
	x, y, w, h, err := c.GetFrameGeometry(windowID)
	if err != nil {
		return nil, err
	}

	info := &WindowInfo{
		ID:     windowID,
		Class:  c.GetWindowClass(windowID),
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		info.PID = int(pid)
	}
	return info, nil
}

// GetWindowClass returns the WM_CLASS class name (the second field),
// falling back to the instance name. Empty when the property is unset.
func (c *Connection) GetWindowClass(windowID xproto.Window) string {
	class, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	if class.Class != "" {
		return class.Class
	}
	return class.Instance
}

// GetFrameGeometry returns the window's outer frame rectangle in root
// coordinates, including WM decorations when the WM reports them.
func (c *Connection) GetFrameGeometry(windowID xproto.Window) (x, y, w, h int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	x = int(translate.DstX)
	y = int(translate.DstY)
	w = int(geom.Width)
	h = int(geom.Height)

	// Grow by the decoration extents so the cutout hugs the frame the user
	// sees, not the client area.
	if extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID); err == nil {
		x -= int(extents.Left)
		y -= int(extents.Top)
		w += int(extents.Left) + int(extents.Right)
		h += int(extents.Top) + int(extents.Bottom)
	}

	return x, y, w, h, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// IsDesktopWindow reports whether a window is the desktop surface itself
// (file manager backgrounds, root desktop icons).
func (c *Connection) IsDesktopWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" {
			return true
		}
	}
	return false
}

// IsWindowMinimized reports whether the window carries _NET_WM_STATE_HIDDEN.
func (c *Connection) IsWindowMinimized(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

// WatchActiveWindow subscribes to _NET_ACTIVE_WINDOW changes on the root
// window and invokes fn from the event loop whenever focus moves.
func (c *Connection) WatchActiveWindow(fn func(active xproto.Window)) error {
	activeAtom, err := c.Atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != activeAtom {
			return
		}
		active, err := ewmh.ActiveWindowGet(c.XUtil)
		if err != nil {
			return
		}
		fn(active)
	}).Connect(c.XUtil, c.Root)

	return nil
}

// WatchWindowGeometry subscribes to structure changes (move, resize,
// destroy) on one window and invokes fn from the event loop on each.
func (c *Connection) WatchWindowGeometry(windowID xproto.Window, fn func()) error {
	if err := xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on window %d: %w", windowID, err)
	}
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		fn()
	}).Connect(c.XUtil, windowID)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		fn()
	}).Connect(c.XUtil, windowID)
	return nil
}

// WatchClientList subscribes to _NET_CLIENT_LIST changes on the root window
// and invokes fn from the event loop whenever a managed window appears or
// disappears.
func (c *Connection) WatchClientList(fn func()) error {
	listAtom, err := c.Atom("_NET_CLIENT_LIST")
	if err != nil {
		return err
	}

	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != listAtom {
			return
		}
		fn()
	}).Connect(c.XUtil, c.Root)

	return nil
}

// UnwatchWindowGeometry removes every handler registered on the window and
// stops event delivery for it. Must run before attaching to the next window
// so no stale callback fires.
func (c *Connection) UnwatchWindowGeometry(windowID xproto.Window) {
	xevent.Detach(c.XUtil, windowID)
	xwindow.New(c.XUtil, windowID).Listen()
}

// Atom interns (or looks up) an atom by name.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}
