package main

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// ICCCM related atoms
var (
	atomWMProtocols    xproto.Atom
	atomWMDeleteWindow xproto.Atom
	atomWMTakeFocus    xproto.Atom
	atomWMState        xproto.Atom
)

// EWMH atoms, published through _NET_SUPPORTED
var (
	atomNetActiveWindow        xproto.Atom
	atomNetClientList          xproto.Atom
	atomNetClientListStacking  xproto.Atom
	atomNetCloseWindow         xproto.Atom
	atomNetCurrentDesktop      xproto.Atom
	atomNetDesktopGeometry     xproto.Atom
	atomNetDesktopNames        xproto.Atom
	atomNetDesktopViewport     xproto.Atom
	atomNetFrameExtents        xproto.Atom
	atomNetNumberOfDesktops    xproto.Atom
	atomNetRequestFrameExtents xproto.Atom
	atomNetSupported           xproto.Atom
	atomNetSupportingWMCheck   xproto.Atom
	atomNetWMDesktop           xproto.Atom
	atomNetWMFullPlacement     xproto.Atom
	atomNetWMName              xproto.Atom
	atomNetWMState             xproto.Atom
	atomNetWMStateFullscreen   xproto.Atom
	atomNetWMWindowType        xproto.Atom
	atomNetWMWindowTypeDialog  xproto.Atom
	atomNetWMWindowTypeNormal  xproto.Atom
	atomNetWMWindowTypeSplash  xproto.Atom
	atomNetWMWindowTypeUtility xproto.Atom
	atomNetWorkarea            xproto.Atom
)

var (
	atomUTF8String xproto.Atom
	atomCommand    xproto.Atom
)

// netAtoms collects every EWMH atom above for _NET_SUPPORTED.
var netAtoms []xproto.Atom

// WM_STATE values (ICCCM 4.1.3.1).
const (
	stateWithdrawn = 0
	stateNormal    = 1
	stateIconic    = 3
)

func (wm *WM) initAtoms() {
	atomWMProtocols = getAtom(wm.xc, "WM_PROTOCOLS")
	atomWMDeleteWindow = getAtom(wm.xc, "WM_DELETE_WINDOW")
	atomWMTakeFocus = getAtom(wm.xc, "WM_TAKE_FOCUS")
	atomWMState = getAtom(wm.xc, "WM_STATE")

	atomNetActiveWindow = getAtom(wm.xc, "_NET_ACTIVE_WINDOW")
	atomNetClientList = getAtom(wm.xc, "_NET_CLIENT_LIST")
	atomNetClientListStacking = getAtom(wm.xc, "_NET_CLIENT_LIST_STACKING")
	atomNetCloseWindow = getAtom(wm.xc, "_NET_CLOSE_WINDOW")
	atomNetCurrentDesktop = getAtom(wm.xc, "_NET_CURRENT_DESKTOP")
	atomNetDesktopGeometry = getAtom(wm.xc, "_NET_DESKTOP_GEOMETRY")
	atomNetDesktopNames = getAtom(wm.xc, "_NET_DESKTOP_NAMES")
	atomNetDesktopViewport = getAtom(wm.xc, "_NET_DESKTOP_VIEWPORT")
	atomNetFrameExtents = getAtom(wm.xc, "_NET_FRAME_EXTENTS")
	atomNetNumberOfDesktops = getAtom(wm.xc, "_NET_NUMBER_OF_DESKTOPS")
	atomNetRequestFrameExtents = getAtom(wm.xc, "_NET_REQUEST_FRAME_EXTENTS")
	atomNetSupported = getAtom(wm.xc, "_NET_SUPPORTED")
	atomNetSupportingWMCheck = getAtom(wm.xc, "_NET_SUPPORTING_WM_CHECK")
	atomNetWMDesktop = getAtom(wm.xc, "_NET_WM_DESKTOP")
	atomNetWMFullPlacement = getAtom(wm.xc, "_NET_WM_FULL_PLACEMENT")
	atomNetWMName = getAtom(wm.xc, "_NET_WM_NAME")
	atomNetWMState = getAtom(wm.xc, "_NET_WM_STATE")
	atomNetWMStateFullscreen = getAtom(wm.xc, "_NET_WM_STATE_FULLSCREEN")
	atomNetWMWindowType = getAtom(wm.xc, "_NET_WM_WINDOW_TYPE")
	atomNetWMWindowTypeDialog = getAtom(wm.xc, "_NET_WM_WINDOW_TYPE_DIALOG")
	atomNetWMWindowTypeNormal = getAtom(wm.xc, "_NET_WM_WINDOW_TYPE_NORMAL")
	atomNetWMWindowTypeSplash = getAtom(wm.xc, "_NET_WM_WINDOW_TYPE_SPLASH")
	atomNetWMWindowTypeUtility = getAtom(wm.xc, "_NET_WM_WINDOW_TYPE_UTILITY")
	atomNetWorkarea = getAtom(wm.xc, "_NET_WORKAREA")

	atomUTF8String = getAtom(wm.xc, "UTF8_STRING")
	atomCommand = getAtom(wm.xc, commandAtomName)

	netAtoms = []xproto.Atom{
		atomNetActiveWindow,
		atomNetClientList,
		atomNetClientListStacking,
		atomNetCloseWindow,
		atomNetCurrentDesktop,
		atomNetDesktopGeometry,
		atomNetDesktopNames,
		atomNetDesktopViewport,
		atomNetFrameExtents,
		atomNetNumberOfDesktops,
		atomNetRequestFrameExtents,
		atomNetSupported,
		atomNetSupportingWMCheck,
		atomNetWMDesktop,
		atomNetWMFullPlacement,
		atomNetWMName,
		atomNetWMState,
		atomNetWMStateFullscreen,
		atomNetWMWindowType,
		atomNetWMWindowTypeDialog,
		atomNetWMWindowTypeNormal,
		atomNetWMWindowTypeSplash,
		atomNetWMWindowTypeUtility,
		atomNetWorkarea,
	}
}

// initEWMH creates the supporting-check window and publishes the
// discovery pair plus the fixed single-desktop properties, so pagers
// and taskbars recognize a compliant WM is running.
func (wm *WM) initEWMH() error {
	check, err := xproto.NewWindowId(wm.xc)
	if err != nil {
		return err
	}
	if err := xproto.CreateWindowChecked(wm.xc, xproto.WindowClassCopyFromParent,
		check, wm.xroot.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, wm.xroot.RootVisual, 0, []uint32{}).Check(); err != nil {
		return err
	}
	wm.wmCheck = check

	const wmName = "stackwm"
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, check, atomNetWMName,
		atomUTF8String, 8, uint32(len(wmName)), []byte(wmName))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetSupported,
		xproto.AtomAtom, 32, uint32(len(netAtoms)), atomBytes(netAtoms))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetSupportingWMCheck,
		xproto.AtomWindow, 32, 1, put32(uint32(check)))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, check, atomNetSupportingWMCheck,
		xproto.AtomWindow, 32, 1, put32(uint32(check)))

	wm.clearActiveWindow()
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetClientList,
		xproto.AtomWindow, 32, 0, nil)
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetClientListStacking,
		xproto.AtomWindow, 32, 0, nil)

	// A single, fixed desktop.
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetCurrentDesktop,
		xproto.AtomCardinal, 32, 1, put32(0))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetNumberOfDesktops,
		xproto.AtomCardinal, 32, 1, put32(1))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetDesktopViewport,
		xproto.AtomCardinal, 32, 2, u32bytes(0, 0))
	names := append([]byte("main"), 0)
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetDesktopNames,
		atomUTF8String, 8, uint32(len(names)), names)
	wm.setDesktopGeometry()
	return nil
}

func (wm *WM) setActiveWindow(w xproto.Window) {
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetActiveWindow,
		xproto.AtomWindow, 32, 1, put32(uint32(w)))
}

func (wm *WM) clearActiveWindow() {
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetActiveWindow,
		xproto.AtomWindow, 32, 0, nil)
}

// appendClientList appends w to _NET_CLIENT_LIST, which keeps mapping
// order rather than stacking order.
func (wm *WM) appendClientList(w xproto.Window) {
	xproto.ChangeProperty(wm.xc, xproto.PropModeAppend, wm.xroot.Root, atomNetClientList,
		xproto.AtomWindow, 32, 1, put32(uint32(w)))
}

// spliceClientList removes w from _NET_CLIENT_LIST, preserving the
// order of the remaining entries.
func (wm *WM) spliceClientList(w xproto.Window) {
	prop, err := xproto.GetProperty(wm.xc, false, wm.xroot.Root, atomNetClientList,
		xproto.AtomWindow, 0, 4096).Reply()
	if err != nil || prop == nil {
		return
	}
	list := u32slice(prop.Value)
	out := removeFromList(list, uint32(w))
	if len(out) == len(list) {
		return
	}
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetClientList,
		xproto.AtomWindow, 32, uint32(len(out)), u32bytes(out...))
}

// setClientListStacking rewrites _NET_CLIENT_LIST_STACKING
// bottom-to-top from the registry. A full rewrite on every change is
// fine for the handful of clients we expect.
func (wm *WM) setClientListStacking() {
	order := stackingOrder(wm.clients)
	data := make([]byte, 0, 4*len(order))
	for _, w := range order {
		data = append(data, put32(uint32(w))...)
	}
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetClientListStacking,
		xproto.AtomWindow, 32, uint32(len(order)), data)
}

func (wm *WM) setDesktopGeometry() {
	sw, sh := uint32(wm.screenWidth), uint32(wm.screenHeight)
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetDesktopGeometry,
		xproto.AtomCardinal, 32, 2, u32bytes(sw, sh))
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, wm.xroot.Root, atomNetWorkarea,
		xproto.AtomCardinal, 32, 4, u32bytes(0, 0, sw, sh))
}

// setFrameExtents reports the border as a uniform frame inset.
func (wm *WM) setFrameExtents(w xproto.Window) {
	bw := uint32(wm.borderWidth)
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, w, atomNetFrameExtents,
		xproto.AtomCardinal, 32, 4, u32bytes(bw, bw, bw, bw))
}

func (wm *WM) setWMState(w xproto.Window, state uint32) {
	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, w, atomWMState,
		atomWMState, 32, 2, u32bytes(state, 0))
}

func (wm *WM) getWMState(w xproto.Window) int {
	prop, err := xproto.GetProperty(wm.xc, false, w, atomWMState, atomWMState, 0, 2).Reply()
	if err != nil || prop == nil || len(prop.Value) < 4 {
		return -1
	}
	return int(get32(prop.Value))
}

// sendProtocol delivers an ICCCM protocol message (WM_TAKE_FOCUS,
// WM_DELETE_WINDOW) to w if w advertises the protocol, reporting
// whether it did.
func (wm *WM) sendProtocol(w xproto.Window, protocol xproto.Atom) bool {
	prop, err := xproto.GetProperty(wm.xc, false, w, atomWMProtocols,
		xproto.GetPropertyTypeAny, 0, 64).Reply()
	if err != nil || prop == nil {
		return false
	}
	supported := false
	for v := prop.Value; len(v) >= 4; v = v[4:] {
		if decodeAtom(v) == protocol {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}
	// ICCCM 4.2.8 ClientMessage
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   atomWMProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(protocol),
			uint32(xproto.TimeCurrentTime),
			0,
			0,
			0,
		}),
	}
	xproto.SendEvent(wm.xc, false, w, xproto.EventMaskNoEvent, string(ev.Bytes()))
	return true
}

func getAtom(xc *xgb.Conn, name string) xproto.Atom {
	rply, err := xproto.InternAtom(xc, false, uint16(len(name)), name).Reply()
	if err != nil {
		panic(err)
	}
	if rply == nil {
		return 0
	}
	return rply.Atom
}

// decodeAtom decodes an xproto.Atom from a property value (expressed
// as bytes). Note that v has to be at least 4 bytes long.
func decodeAtom(v []byte) xproto.Atom {
	return xproto.Atom(get32(v))
}

// Property payloads travel in the connection's byte order, which xgb
// fixes to little-endian.

func get32(v []byte) uint32 {
	return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24
}

func put32(u uint32) []byte {
	return []byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)}
}

func u32bytes(us ...uint32) []byte {
	b := make([]byte, 0, 4*len(us))
	for _, u := range us {
		b = append(b, put32(u)...)
	}
	return b
}

func u32slice(v []byte) []uint32 {
	us := make([]uint32, 0, len(v)/4)
	for ; len(v) >= 4; v = v[4:] {
		us = append(us, get32(v))
	}
	return us
}

func atomBytes(atoms []xproto.Atom) []byte {
	b := make([]byte, 0, 4*len(atoms))
	for _, a := range atoms {
		b = append(b, put32(uint32(a))...)
	}
	return b
}

func removeFromList(list []uint32, w uint32) []uint32 {
	out := list[:0]
	for _, u := range list {
		if u != w {
			out = append(out, u)
		}
	}
	return out
}
