package platform

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dimveil/dimveil/internal/geometry"
	"github.com/dimveil/dimveil/internal/mask"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display. Bounds are in engine screen space,
// bottom-left origin anchored at the primary display.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  geometry.Rect
}

// Window contains metadata and frame geometry for a top-level window, in
// engine screen space.
type Window struct {
	ID    WindowID
	PID   int
	AppID string
	Title string
	Frame geometry.Rect
}

// Surface is one dimming overlay covering a single display. Fill and blur
// rectangles are surface-local, bottom-left origin.
type Surface interface {
	// Show maps the surface and stacks it above the windows it dims.
	Show()
	// Hide unmaps the surface without destroying it.
	Hide()
	// Destroy releases the surface.
	Destroy()

	// SetGeometry repositions the surface after a display layout change.
	SetGeometry(bounds geometry.Rect) error
	// SetFill restricts the dimmed region to the given rectangles. An
	// empty list leaves nothing dimmed.
	SetFill(rects []geometry.Rect) error
	// SetOpacity sets the whole-surface opacity in [0, 1].
	SetOpacity(opacity float64) error
	// SetColor recolors the dim fill.
	SetColor(c colorful.Color) error
	// SetBlur applies a backdrop blur behind the given rectangles, or
	// removes it when params.Hidden is set.
	SetBlur(params mask.BlurParams, rects []geometry.Rect) error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (Window, bool, error)
	ListWindows() ([]Window, error)
	// DesktopFocused reports whether focus sits on the desktop surface
	// rather than an application window.
	DesktopFocused() (bool, error)

	CreateSurface(d Display) (Surface, error)
	BlurSupported() bool

	// WatchActiveWindow invokes fn from the event loop on focus changes.
	WatchActiveWindow(fn func()) error
	// WatchWindowList invokes fn from the event loop when a top-level
	// window is created or destroyed.
	WatchWindowList(fn func()) error
	// WatchWindow invokes fn from the event loop when the given window
	// moves, resizes, or is destroyed.
	WatchWindow(id WindowID, fn func()) error
	// UnwatchWindow removes a WatchWindow registration synchronously.
	UnwatchWindow(id WindowID)
	// WatchDisplays invokes fn from the event loop on display layout
	// changes.
	WatchDisplays(fn func()) error

	// Run blocks, dispatching platform events until Quit.
	Run()
	Quit()
	Close()
}
