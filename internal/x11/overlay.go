package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// OverlayWindow is an override-redirect window stacked above the clients it
// dims. The window manager never decorates or focuses it, and the input
// shape is cleared so clicks pass through to whatever lies beneath.
type OverlayWindow struct {
	conn *Connection
	win  *xwindow.Window
}

// CreateOverlay creates an unmapped overlay window at the given root
// geometry, filled with the given background pixel.
func (c *Connection) CreateOverlay(x, y, width, height int, pixel uint32) (*OverlayWindow, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate overlay window id: %w", err)
	}

	err = win.CreateChecked(c.Root, x, y, width, height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect, pixel, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	o := &OverlayWindow{conn: c, win: win}

	// Hint the compositor that this is a passive surface. Override-redirect
	// already keeps the WM away, but compositors read the type for effects.
	xprop.ChangeProp32(c.XUtil, win.Id, "_NET_WM_WINDOW_TYPE", "ATOM",
		uint(mustAtom(c, "_NET_WM_WINDOW_TYPE_NOTIFICATION")))

	if c.shapeOK {
		o.clearInputShape()
	}

	return o, nil
}

// Id returns the X window id, used for compositor properties.
func (o *OverlayWindow) Id() xproto.Window {
	return o.win.Id
}

// Map makes the overlay visible.
func (o *OverlayWindow) Map() {
	o.win.Map()
}

// Unmap hides the overlay without destroying it.
func (o *OverlayWindow) Unmap() {
	o.win.Unmap()
}

// Destroy releases the window.
func (o *OverlayWindow) Destroy() {
	o.win.Destroy()
}

// MoveResize repositions the overlay in root coordinates.
func (o *OverlayWindow) MoveResize(x, y, width, height int) {
	o.win.MoveResize(x, y, width, height)
}

// Raise stacks the overlay above its siblings.
func (o *OverlayWindow) Raise() {
	o.win.Stack(xproto.StackModeAbove)
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY. The compositor applies it to the
// whole surface; 0 is fully transparent, 1 fully opaque.
func (o *OverlayWindow) SetOpacity(opacity float64) error {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	val := uint(opacity * 0xffffffff)
	return xprop.ChangeProp32(o.conn.XUtil, o.win.Id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", val)
}

// SetBackgroundPixel recolors the overlay and repaints it.
func (o *OverlayWindow) SetBackgroundPixel(pixel uint32) error {
	err := xproto.ChangeWindowAttributesChecked(o.conn.XUtil.Conn(), o.win.Id,
		xproto.CwBackPixel, []uint32{pixel}).Check()
	if err != nil {
		return fmt.Errorf("failed to set overlay background: %w", err)
	}
	return xproto.ClearAreaChecked(o.conn.XUtil.Conn(), false, o.win.Id, 0, 0, 0, 0).Check()
}

// SetBoundingShape restricts the visible region of the overlay to the given
// rectangles in window-local coordinates. An empty list hides every pixel.
func (o *OverlayWindow) SetBoundingShape(rects []xproto.Rectangle) error {
	if !o.conn.shapeOK {
		return nil
	}
	return shape.RectanglesChecked(o.conn.XUtil.Conn(),
		shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted,
		o.win.Id, 0, 0, rects).Check()
}

// ResetBoundingShape restores the full rectangular shape.
func (o *OverlayWindow) ResetBoundingShape(width, height int) error {
	return o.SetBoundingShape([]xproto.Rectangle{{
		X: 0, Y: 0, Width: uint16(width), Height: uint16(height),
	}})
}

// clearInputShape empties the input region so every click falls through.
func (o *OverlayWindow) clearInputShape() error {
	return shape.RectanglesChecked(o.conn.XUtil.Conn(),
		shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted,
		o.win.Id, 0, 0, nil).Check()
}

func mustAtom(c *Connection, name string) xproto.Atom {
	atom, err := c.Atom(name)
	if err != nil {
		return 0
	}
	return atom
}
