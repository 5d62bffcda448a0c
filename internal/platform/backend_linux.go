//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/mask"
	"github.com/dimveil/dimveil/internal/x11"
)

// X11Backend wraps an existing X11 connection behind the platform Backend
// interface. All geometry crossing this boundary is flipped between the
// server's top-left-origin root space and engine screen space.
type X11Backend struct {
	conn *x11.Connection

	mu sync.Mutex
	// flipBase is the root-space y of the primary display's bottom edge,
	// the pivot for both directions of the y flip.
	flipBase int
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend creates a Linux platform backend from an existing X11 connection.
func NewX11Backend(conn *x11.Connection) (*X11Backend, error) {
	b := &X11Backend{conn: conn}
	if _, err := b.Displays(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewX11BackendFromDisplay creates a new backend by opening a fresh X11 connection.
func NewX11BackendFromDisplay() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewX11Backend(conn)
}

// Displays returns all active displays in engine screen space, primary
// first. Calling it also refreshes the flip pivot, so it must run after
// every display layout change.
func (b *X11Backend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	base := 0
	for _, m := range monitors {
		if m.Primary {
			base = m.Y + m.Height
		}
	}
	b.mu.Lock()
	b.flipBase = base
	b.mu.Unlock()

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Primary: m.Primary,
			Bounds: b.toEngine(geometry.Rect{
				X: m.X, Y: m.Y, Width: m.Width, Height: m.Height,
			}),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		if displays[i].Primary != displays[j].Primary {
			return displays[i].Primary
		}
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveWindow returns the focused window, or ok=false when focus is on
// nothing or on a non-application surface.
func (b *X11Backend) ActiveWindow() (Window, bool, error) {
	active, err := b.conn.GetActiveWindow()
	if err != nil {
		return Window{}, false, err
	}
	if active == 0 || !b.conn.IsNormalWindow(active) {
		return Window{}, false, nil
	}

	info, err := b.conn.GetWindowInfo(active)
	if err != nil {
		return Window{}, false, nil
	}
	return b.windowFromInfo(info), true, nil
}

// ListWindows returns the normal application windows on the current
// desktop, excluding minimized ones.
func (b *X11Backend) ListWindows() ([]Window, error) {
	infos, err := b.conn.ListWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(infos))
	for _, info := range infos {
		if !b.conn.IsNormalWindow(info.ID) {
			continue
		}
		if !b.conn.OnCurrentDesktop(info.ID) {
			continue
		}
		if b.conn.IsWindowMinimized(info.ID) {
			continue
		}
		windows = append(windows, b.windowFromInfo(&info))
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

// DesktopFocused reports whether focus sits on the desktop surface.
func (b *X11Backend) DesktopFocused() (bool, error) {
	active, err := b.conn.GetActiveWindow()
	if err != nil {
		return false, err
	}
	if active == 0 {
		return true, nil
	}
	return b.conn.IsDesktopWindow(active), nil
}

// CreateSurface builds an overlay window covering the display.
func (b *X11Backend) CreateSurface(d Display) (Surface, error) {
	root := b.toRoot(d.Bounds)
	ow, err := b.conn.CreateOverlay(root.X, root.Y, root.Width, root.Height, 0x000000)
	if err != nil {
		return nil, err
	}
	s := &x11Surface{backend: b, win: ow, bounds: d.Bounds}
	// Start invisible so the first fade-in ramps from nothing.
	if err := ow.SetOpacity(0); err != nil {
		ow.Destroy()
		return nil, err
	}
	return s, nil
}

// BlurSupported reports whether the compositor implements blur-behind.
func (b *X11Backend) BlurSupported() bool {
	return b.conn.BlurSupported()
}

// WatchActiveWindow invokes fn from the event loop on focus changes.
func (b *X11Backend) WatchActiveWindow(fn func()) error {
	return b.conn.WatchActiveWindow(func(xproto.Window) { fn() })
}

// WatchWindowList invokes fn from the event loop when the set of managed
// windows changes.
func (b *X11Backend) WatchWindowList(fn func()) error {
	return b.conn.WatchClientList(fn)
}

// WatchWindow invokes fn from the event loop on geometry changes of one window.
func (b *X11Backend) WatchWindow(id WindowID, fn func()) error {
	return b.conn.WatchWindowGeometry(xproto.Window(id), fn)
}

// UnwatchWindow removes the geometry watch for one window.
func (b *X11Backend) UnwatchWindow(id WindowID) {
	b.conn.UnwatchWindowGeometry(xproto.Window(id))
}

// WatchDisplays invokes fn from the event loop on display layout changes.
func (b *X11Backend) WatchDisplays(fn func()) error {
	return b.conn.WatchMonitorChanges(fn)
}

// Run starts the X11 event loop (blocking).
func (b *X11Backend) Run() {
	b.conn.EventLoop()
}

// Quit stops the event loop.
func (b *X11Backend) Quit() {
	b.conn.Quit()
}

// Close disconnects from the X server.
func (b *X11Backend) Close() {
	b.conn.Close()
}

// Connection exposes the underlying X11 connection for hotkey binding.
func (b *X11Backend) Connection() *x11.Connection {
	return b.conn
}

func (b *X11Backend) windowFromInfo(info *x11.WindowInfo) Window {
	return Window{
		ID:    WindowID(info.ID),
		PID:   info.PID,
		AppID: info.Class,
		Frame: b.toEngine(geometry.Rect{
			X: info.X, Y: info.Y, Width: info.Width, Height: info.Height,
		}),
	}
}

// toEngine converts a root-space rectangle to engine screen space. The flip
// is its own inverse, so toRoot shares the pivot.
func (b *X11Backend) toEngine(r geometry.Rect) geometry.Rect {
	b.mu.Lock()
	base := b.flipBase
	b.mu.Unlock()
	return geometry.FlipY(r, base)
}

func (b *X11Backend) toRoot(r geometry.Rect) geometry.Rect {
	return b.toEngine(r)
}

// x11Surface implements Surface over an override-redirect overlay window.
type x11Surface struct {
	backend *X11Backend
	win     *x11.OverlayWindow
	bounds  geometry.Rect
}

func (s *x11Surface) Show() {
	s.win.Map()
	s.win.Raise()
}

func (s *x11Surface) Hide() {
	s.win.Unmap()
}

func (s *x11Surface) Destroy() {
	s.backend.conn.ClearBlurRegion(s.win.Id())
	s.win.Destroy()
}

func (s *x11Surface) SetGeometry(bounds geometry.Rect) error {
	s.bounds = bounds
	root := s.backend.toRoot(bounds)
	s.win.MoveResize(root.X, root.Y, root.Width, root.Height)
	// The old bounding shape is sized for the old geometry; show the full
	// surface until the next fill update.
	return s.win.ResetBoundingShape(bounds.Width, bounds.Height)
}

func (s *x11Surface) SetFill(rects []geometry.Rect) error {
	return s.win.SetBoundingShape(s.localRects(rects))
}

func (s *x11Surface) SetOpacity(opacity float64) error {
	return s.win.SetOpacity(opacity)
}

func (s *x11Surface) SetColor(c colorful.Color) error {
	r, g, bl := c.RGB255()
	pixel := uint32(r)<<16 | uint32(g)<<8 | uint32(bl)
	return s.win.SetBackgroundPixel(pixel)
}

func (s *x11Surface) SetBlur(params mask.BlurParams, rects []geometry.Rect) error {
	if params.Hidden || len(rects) == 0 {
		return s.backend.conn.ClearBlurRegion(s.win.Id())
	}
	// The blur-behind protocol carries only the region; radius and
	// saturation stay under compositor control.
	return s.backend.conn.SetBlurRegion(s.win.Id(), s.localRects(rects))
}

// localRects converts surface-local engine rectangles to window-local X
// rectangles, flipping around the surface's own height.
func (s *x11Surface) localRects(rects []geometry.Rect) []xproto.Rectangle {
	out := make([]xproto.Rectangle, 0, len(rects))
	for _, r := range rects {
		fl := geometry.FlipY(r, s.bounds.Height)
		out = append(out, xproto.Rectangle{
			X:      int16(fl.X),
			Y:      int16(fl.Y),
			Width:  uint16(fl.Width),
			Height: uint16(fl.Height),
		})
	}
	return out
}
