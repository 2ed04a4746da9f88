package main

import (
	"errors"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

var (
	errQuit      = errors.New("quit")
	errAnotherWM = errors.New("another window manager is already running")
)

// WM holds the global window manager state: the X connection, the root
// screen, and the client registry. Everything here is mutated from the
// event loop only, so no locking is needed; see handleEvent.
type WM struct {
	xc    *xgb.Conn
	xroot xproto.ScreenInfo

	screenWidth  uint16
	screenHeight uint16
	borderWidth  uint16

	// clients is the registry in stacking order; index 0 is the head,
	// i.e. the frontmost and focused client.
	clients []*Client

	wmCheck xproto.Window

	api *APIServer
}

func NewWM() *WM {
	return &WM{borderWidth: 1}
}

// Init connects to the X server, claims window manager duties on the
// root window and adopts already-mapped windows.
func (wm *WM) Init() error {
	xc, err := xgb.NewConn()
	if err != nil {
		return err
	}
	wm.xc = xc
	setup := xproto.Setup(xc)
	if setup == nil || len(setup.Roots) < 1 {
		return errors.New("could not parse X setup info")
	}
	wm.xroot = setup.Roots[0]
	wm.screenWidth = wm.xroot.WidthInPixels
	wm.screenHeight = wm.xroot.HeightInPixels
	wm.initAtoms()
	if err := wm.becomeWM(); err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return errAnotherWM
		}
		return err
	}
	if err := wm.initCursor(); err != nil {
		slog.Warn("could not set root cursor", "error", err)
	}
	if err := wm.initEWMH(); err != nil {
		return err
	}
	return wm.scan()
}

func (wm *WM) Deinit() {
	if wm.xc != nil {
		wm.xc.Close()
	}
}

// becomeWM selects the substructure-redirect events on the root
// window. Only one connection may hold that selection, so an
// AccessError here means another WM is running.
func (wm *WM) becomeWM() error {
	return xproto.ChangeWindowAttributesChecked(
		wm.xc,
		wm.xroot.Root,
		xproto.CwEventMask,
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskStructureNotify |
				xproto.EventMaskPropertyChange,
		},
	).Check()
}

// initCursor puts the classic left-pointer glyph cursor on the root
// window so the screen does not start with no cursor at all.
func (wm *WM) initCursor() error {
	font, err := xproto.NewFontId(wm.xc)
	if err != nil {
		return err
	}
	if err := xproto.OpenFontChecked(wm.xc, font, uint16(len("cursor")), "cursor").Check(); err != nil {
		return err
	}
	defer xproto.CloseFont(wm.xc, font)
	cursor, err := xproto.NewCursorId(wm.xc)
	if err != nil {
		return err
	}
	const xcLeftPtr = 68 // XC_left_ptr from cursorfont.h.
	if err := xproto.CreateGlyphCursorChecked(
		wm.xc,
		cursor,
		font,
		font,
		xcLeftPtr,
		xcLeftPtr+1,
		0, 0, 0,
		0xffff, 0xffff, 0xffff,
	).Check(); err != nil {
		return err
	}
	return xproto.ChangeWindowAttributesChecked(
		wm.xc,
		wm.xroot.Root,
		xproto.CwCursor,
		[]uint32{uint32(cursor)},
	).Check()
}

// scan adopts windows that were mapped (or iconified) before the
// manager started. Non-transient windows are adopted first so dialogs
// end up stacked above the windows they belong to.
func (wm *WM) scan() error {
	tree, err := xproto.QueryTree(wm.xc, wm.xroot.Root).Reply()
	if err != nil {
		return err
	}
	for _, transientPass := range []bool{false, true} {
		for _, w := range tree.Children {
			if w == wm.wmCheck {
				continue
			}
			attrs, err := xproto.GetWindowAttributes(wm.xc, w).Reply()
			if err != nil || attrs.OverrideRedirect {
				continue
			}
			if attrs.MapState != xproto.MapStateViewable && wm.getWMState(w) != stateIconic {
				continue
			}
			if (wm.transientFor(w) != 0) != transientPass {
				continue
			}
			if err := wm.manage(w); err != nil {
				slog.Debug("could not adopt window", "window", w, "error", err)
			}
		}
	}
	return nil
}

// GetClient returns the registered client for w, or nil.
func (wm *WM) GetClient(w xproto.Window) *Client {
	return findClient(wm.clients, w)
}

// addClient registers c at the front of the stacking order. Duplicate
// map requests are a no-op. The EWMH lists are republished right away
// so external tools never observe a stale registry.
func (wm *WM) addClient(c *Client) {
	before := len(wm.clients)
	wm.clients = insertFront(wm.clients, c)
	if len(wm.clients) == before {
		return
	}
	wm.appendClientList(c.Window)
	wm.setClientListStacking()
}

// removeClient splices w out of the registry, republishing the EWMH
// lists. Unknown windows are a no-op.
func (wm *WM) removeClient(w xproto.Window) *Client {
	clients, removed := removeWindow(wm.clients, w)
	if removed == nil {
		return nil
	}
	wm.clients = clients
	wm.spliceClientList(w)
	wm.setClientListStacking()
	return removed
}

// focus hard-redirects input focus to w and publishes it as the
// active window. Clients that support WM_TAKE_FOCUS also get the
// polite notification; some need it to update their own highlight.
func (wm *WM) focus(w xproto.Window) {
	xproto.SetInputFocus(wm.xc, xproto.InputFocusPointerRoot, w, xproto.TimeCurrentTime)
	wm.setActiveWindow(w)
	wm.sendProtocol(w, atomWMTakeFocus)
}

// closeClient asks w to close via WM_DELETE_WINDOW; clients that do
// not speak the protocol get their connection killed instead, so a
// close always eventually removes the client.
func (wm *WM) closeClient(w xproto.Window) {
	if !wm.sendProtocol(w, atomWMDeleteWindow) {
		xproto.KillClient(wm.xc, uint32(w))
	}
}

// pop raises w to the top of the stack and focuses it. Raising the
// window that is already on top changes nothing, not even the
// published stacking list.
func (wm *WM) pop(w xproto.Window) {
	c := wm.GetClient(w)
	if c == nil || wm.clients[0] == c {
		return
	}
	wm.focus(w)
	xproto.ConfigureWindow(wm.xc, w, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	wm.clients, _ = moveToFront(wm.clients, w)
	wm.setClientListStacking()
}

// resize recomputes the client's geometry from its current
// classification and applies it.
func (wm *WM) resize(c *Client) {
	g := placeClient(c.Floating(), c.ReqW, c.ReqH, wm.screenWidth, wm.screenHeight, wm.borderWidth)
	c.X, c.Y, c.Width, c.Height = g.X, g.Y, g.Width, g.Height
	xproto.ConfigureWindow(
		wm.xc,
		c.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(uint16(g.X)),
			uint32(uint16(g.Y)),
			uint32(g.Width),
			uint32(g.Height),
		},
	)
}

// Registry primitives. The registry is a plain slice ordered
// front-to-back; counts are small enough that linear scans win over
// anything fancier.

func findClient(clients []*Client, w xproto.Window) *Client {
	for _, c := range clients {
		if c.Window == w {
			return c
		}
	}
	return nil
}

func insertFront(clients []*Client, c *Client) []*Client {
	if findClient(clients, c.Window) != nil {
		return clients
	}
	return append([]*Client{c}, clients...)
}

func removeWindow(clients []*Client, w xproto.Window) ([]*Client, *Client) {
	for i, c := range clients {
		if c.Window == w {
			return append(clients[:i], clients[i+1:]...), c
		}
	}
	return clients, nil
}

func moveToFront(clients []*Client, w xproto.Window) ([]*Client, bool) {
	for i, c := range clients {
		if c.Window != w {
			continue
		}
		if i == 0 {
			return clients, false
		}
		clients = append(clients[:i], clients[i+1:]...)
		return append([]*Client{c}, clients...), true
	}
	return clients, false
}

// stackingOrder returns the registry windows bottom-to-top, the order
// _NET_CLIENT_LIST_STACKING wants.
func stackingOrder(clients []*Client) []xproto.Window {
	order := make([]xproto.Window, len(clients))
	for i, c := range clients {
		order[len(clients)-1-i] = c.Window
	}
	return order
}
