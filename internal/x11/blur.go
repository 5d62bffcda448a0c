package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

const blurRegionAtom = "_KDE_NET_WM_BLUR_BEHIND_REGION"

// CompositorActive reports whether a compositing manager owns the
// _NET_WM_CM_S0 selection. Without one, opacity and blur hints are inert.
func (c *Connection) CompositorActive() bool {
	atom, err := c.Atom("_NET_WM_CM_S0")
	if err != nil {
		return false
	}
	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false
	}
	return reply.Owner != 0
}

// BlurSupported reports whether the running compositor understands the KDE
// blur-behind protocol. The atom is only interned by a compositor that
// implements it, so an only-if-exists lookup doubles as capability probe.
func (c *Connection) BlurSupported() bool {
	if !c.CompositorActive() {
		return false
	}
	reply, err := xproto.InternAtom(c.XUtil.Conn(), true,
		uint16(len(blurRegionAtom)), blurRegionAtom).Reply()
	if err != nil {
		return false
	}
	return reply.Atom != 0
}

// SetBlurRegion asks the compositor to blur what lies behind the given
// window-local rectangles.
func (c *Connection) SetBlurRegion(windowID xproto.Window, rects []xproto.Rectangle) error {
	data := make([]uint, 0, len(rects)*4)
	for _, r := range rects {
		data = append(data, uint(r.X), uint(r.Y), uint(r.Width), uint(r.Height))
	}
	err := xprop.ChangeProp32(c.XUtil, windowID, blurRegionAtom, "CARDINAL", data...)
	if err != nil {
		return fmt.Errorf("failed to set blur region: %w", err)
	}
	return nil
}

// ClearBlurRegion removes the blur hint entirely. Note that an empty region
// list means "blur the whole window" to the compositor, so disabling blur
// requires deleting the property.
func (c *Connection) ClearBlurRegion(windowID xproto.Window) error {
	atom, err := c.Atom(blurRegionAtom)
	if err != nil {
		return err
	}
	return xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check()
}
