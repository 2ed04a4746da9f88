package main

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Client is an X11 window managed by us. A client is either maximized
// (covers the whole screen, border rendered off-screen) or floating
// (centered at its requested size).
type Client struct {
	// Window is X11's window ID for the client.
	Window xproto.Window
	// Fixed means the size hints pin the window to a single size.
	Fixed bool
	// Normal means the EWMH window type is NORMAL, or the property is
	// absent on a non-transient window.
	Normal bool
	// ReqW and ReqH remember the size the client last asked for.
	ReqW, ReqH uint16
	// Currently applied geometry.
	X, Y          int16
	Width, Height uint16

	// fullscreen records a _NET_WM_STATE fullscreen request that
	// arrived right after mapping; it pins the client to maximized
	// even if its hints would make it float.
	fullscreen bool
	// fresh is true until the client's first post-map property or
	// configure event; only fresh clients honor the fullscreen quirk.
	fresh bool
}

// Floating reports whether the client gets centered floating geometry
// instead of being maximized.
func (c *Client) Floating() bool {
	if c.fullscreen {
		return false
	}
	return c.Fixed || !c.Normal
}

type geometry struct {
	X, Y          int16
	Width, Height uint16
}

// placeClient picks the geometry for a client. Maximized clients cover
// the whole screen with the border pushed off-screen. Floating clients
// are centered per axis; an axis whose requested size plus borders does
// not fit falls back to the maximized size on that axis only.
func placeClient(floating bool, reqW, reqH, sw, sh, bw uint16) geometry {
	g := geometry{X: -int16(bw), Y: -int16(bw), Width: sw, Height: sh}
	if !floating {
		return g
	}
	if tw := uint32(reqW) + 2*uint32(bw); tw < uint32(sw) {
		g.X = int16((uint32(sw) - tw) / 2)
		g.Width = reqW
	}
	if th := uint32(reqH) + 2*uint32(bw); th < uint32(sh) {
		g.Y = int16((uint32(sh) - th) / 2)
		g.Height = reqH
	}
	return g
}

// WM_NORMAL_HINTS flag bits and field offsets (ICCCM 4.1.2.3).
const (
	hintPMinSize  = 1 << 4
	hintPMaxSize  = 1 << 5
	hintPBaseSize = 1 << 8
)

// fixedSizeHints reports whether a raw WM_NORMAL_HINTS property pins
// the window to one size: equal min and max, with the base size
// standing in when no min is declared.
func fixedSizeHints(hints []uint32) bool {
	if len(hints) < 17 {
		return false
	}
	flags := hints[0]
	if flags&hintPMaxSize == 0 {
		return false
	}
	minW, minH := hints[5], hints[6]
	if flags&hintPMinSize == 0 {
		if flags&hintPBaseSize == 0 {
			return false
		}
		minW, minH = hints[15], hints[16]
	}
	return minW == hints[7] && minH == hints[8]
}

// readFixed fetches and evaluates the client's WM_NORMAL_HINTS. Absent
// or malformed hints mean "not fixed".
func (wm *WM) readFixed(w xproto.Window) bool {
	prop, err := xproto.GetProperty(wm.xc, false, w, xproto.AtomWmNormalHints,
		xproto.AtomWmSizeHints, 0, 18).Reply()
	if err != nil || prop == nil {
		return false
	}
	return fixedSizeHints(u32slice(prop.Value))
}

// transientFor returns the window this one is a dialog for, or 0.
func (wm *WM) transientFor(w xproto.Window) xproto.Window {
	prop, err := xproto.GetProperty(wm.xc, false, w, xproto.AtomWmTransientFor,
		xproto.AtomWindow, 0, 1).Reply()
	if err != nil || prop == nil || len(prop.Value) < 4 {
		return 0
	}
	return xproto.Window(get32(prop.Value))
}

// readNormal reports whether the window's EWMH type is NORMAL. When
// the property is absent the type is inferred from WM_TRANSIENT_FOR
// and, if adopt is set, written back onto the window so other tools
// see the same answer we computed.
func (wm *WM) readNormal(w xproto.Window, adopt bool) bool {
	prop, err := xproto.GetProperty(wm.xc, false, w, atomNetWMWindowType,
		xproto.AtomAtom, 0, 1).Reply()
	if err == nil && prop != nil && len(prop.Value) >= 4 {
		return decodeAtom(prop.Value) == atomNetWMWindowTypeNormal
	}
	inferred := atomNetWMWindowTypeNormal
	if wm.transientFor(w) != 0 {
		inferred = atomNetWMWindowTypeDialog
	}
	if adopt {
		xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, w, atomNetWMWindowType,
			xproto.AtomAtom, 32, 1, put32(uint32(inferred)))
	}
	return inferred == atomNetWMWindowTypeNormal
}

// reclassify re-reads the properties that govern the floating decision
// and reapplies geometry if the decision flipped.
func (wm *WM) reclassify(c *Client) {
	wasFloating := c.Floating()
	c.Fixed = wm.readFixed(c.Window)
	c.Normal = wm.readNormal(c.Window, false)
	if c.Floating() != wasFloating {
		wm.resize(c)
	}
}
