// Package dimmer contains the dimming coordinator: the style state machine,
// the temporary override slots, and the wiring between the active-window
// tracker and the overlay surfaces.
package dimmer

import (
	"fmt"
	"strings"
)

// Style is the 2-bit dim/blur enablement lattice. The zero value is off.
// Keeping it a bit set rather than free-form strings makes an undefined
// style unrepresentable.
type Style uint8

const (
	styleDimBit  Style = 1 << 0
	styleBlurBit Style = 1 << 1

	StyleOff        Style = 0
	StyleDimOnly          = styleDimBit
	StyleBlurOnly         = styleBlurBit
	StyleDimAndBlur       = styleDimBit | styleBlurBit
)

// Dim reports whether the dim fill is enabled.
func (s Style) Dim() bool { return s&styleDimBit != 0 }

// Blur reports whether the blur backdrop is enabled.
func (s Style) Blur() bool { return s&styleBlurBit != 0 }

// WithDim returns the style with the dim bit set or cleared.
func (s Style) WithDim(on bool) Style {
	if on {
		return s | styleDimBit
	}
	return s &^ styleDimBit
}

// WithBlur returns the style with the blur bit set or cleared.
func (s Style) WithBlur(on bool) Style {
	if on {
		return s | styleBlurBit
	}
	return s &^ styleBlurBit
}

func (s Style) String() string {
	switch s {
	case StyleOff:
		return "off"
	case StyleDimOnly:
		return "dim"
	case StyleBlurOnly:
		return "blur"
	case StyleDimAndBlur:
		return "dim+blur"
	}
	return fmt.Sprintf("Style(%d)", uint8(s))
}

// ParseStyle parses a style name as used in config and IPC.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "off":
		return StyleOff, nil
	case "dim":
		return StyleDimOnly, nil
	case "blur":
		return StyleBlurOnly, nil
	case "dim+blur", "blur+dim", "both":
		return StyleDimAndBlur, nil
	}
	return StyleOff, fmt.Errorf("unknown style %q (want off, dim, blur, or dim+blur)", s)
}
