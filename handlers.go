package main

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

// handleEvent blocks for the next X event and runs the matching
// handler to completion. This is the process's only suspension point;
// every registry and session mutation happens below here, one event
// at a time.
func (wm *WM) handleEvent() error {
	xev, err := wm.xc.WaitForEvent()
	if xev == nil && err == nil {
		// Connection gone.
		return errQuit
	}
	if err != nil {
		// X errors caused by windows racing away between event
		// generation and handling are expected; drop them.
		slog.Debug("x error", "error", err)
		return nil
	}
	var herr error
	switch e := xev.(type) {
	case xproto.ButtonPressEvent:
		herr = wm.handleButtonPress(e)
	case xproto.ClientMessageEvent:
		herr = wm.handleClientMessage(e)
	case xproto.ConfigureNotifyEvent:
		herr = wm.handleConfigureNotify(e)
	case xproto.ConfigureRequestEvent:
		herr = wm.handleConfigureRequest(e)
	case xproto.FocusInEvent:
		herr = wm.handleFocusIn(e)
	case xproto.MapRequestEvent:
		herr = wm.handleMapRequest(e)
	case xproto.PropertyNotifyEvent:
		herr = wm.handlePropertyNotify(e)
	case xproto.UnmapNotifyEvent:
		herr = wm.handleUnmapNotify(e)
	}
	if wm.api != nil {
		wm.api.broadcast(map[string]interface{}{
			"type":  fmt.Sprintf("%T", xev),
			"event": xev,
		})
	}
	return herr
}

func (wm *WM) handleMapRequest(e xproto.MapRequestEvent) error {
	attrs, err := xproto.GetWindowAttributes(wm.xc, e.Window).Reply()
	if err == nil && attrs.OverrideRedirect {
		// Windows that place themselves are mapped untouched.
		xproto.MapWindow(wm.xc, e.Window)
		return nil
	}
	return wm.manage(e.Window)
}

// manage registers, places, maps and focuses a window. Used for map
// requests and for the startup scan; duplicate requests are a no-op.
func (wm *WM) manage(w xproto.Window) error {
	if wm.GetClient(w) != nil {
		return nil
	}
	c := &Client{Window: w, fresh: true}
	c.Fixed = wm.readFixed(w)
	c.Normal = wm.readNormal(w, true)
	if geom, err := xproto.GetGeometry(wm.xc, xproto.Drawable(w)).Reply(); err == nil {
		c.ReqW, c.ReqH = geom.Width, geom.Height
	}
	wm.addClient(c)
	wm.resize(c)

	xproto.ChangeProperty(wm.xc, xproto.PropModeReplace, w, atomNetWMDesktop,
		xproto.AtomCardinal, 32, 1, put32(0))
	// Passive sync grab on every button so clicks raise the window and
	// are then replayed to the client; see handleButtonPress.
	xproto.GrabButton(wm.xc, true, w, uint16(xproto.EventMaskButtonPress),
		xproto.GrabModeSync, xproto.GrabModeSync,
		xproto.WindowNone, 0,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
	if err := xproto.ChangeWindowAttributesChecked(wm.xc, w, xproto.CwEventMask,
		[]uint32{xproto.EventMaskFocusChange | xproto.EventMaskPropertyChange}).Check(); err != nil {
		return err
	}
	xproto.ConfigureWindow(wm.xc, w, xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(wm.borderWidth)})
	wm.setFrameExtents(w)
	wm.setWMState(w, stateNormal)
	xproto.MapWindow(wm.xc, w)
	wm.focus(w)
	return nil
}

func (wm *WM) handleConfigureRequest(e xproto.ConfigureRequestEvent) error {
	c := wm.GetClient(e.Window)
	if c != nil && c.Floating() {
		if e.ValueMask&xproto.ConfigWindowWidth != 0 {
			c.ReqW = e.Width
		}
		if e.ValueMask&xproto.ConfigWindowHeight != 0 {
			c.ReqH = e.Height
		}
		c.fresh = false
		wm.resize(c)
		return nil
	}
	// ICCCM wants every configure request answered even when refused;
	// restate the geometry we enforce in a synthetic ConfigureNotify.
	g := geometry{}
	if c != nil {
		g = geometry{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
	} else {
		rep, err := xproto.GetGeometry(wm.xc, xproto.Drawable(e.Window)).Reply()
		if err != nil {
			return nil
		}
		g = geometry{X: rep.X, Y: rep.Y, Width: rep.Width, Height: rep.Height}
	}
	cne := xproto.ConfigureNotifyEvent{
		Event:       e.Window,
		Window:      e.Window,
		X:           g.X,
		Y:           g.Y,
		Width:       g.Width,
		Height:      g.Height,
		BorderWidth: wm.borderWidth,
	}
	xproto.SendEvent(wm.xc, false, e.Window,
		xproto.EventMaskStructureNotify, string(cne.Bytes()))
	return nil
}

func (wm *WM) handleConfigureNotify(e xproto.ConfigureNotifyEvent) error {
	if e.Window == wm.xroot.Root {
		if e.Width == wm.screenWidth && e.Height == wm.screenHeight {
			return nil
		}
		wm.screenWidth, wm.screenHeight = e.Width, e.Height
		wm.setDesktopGeometry()
		for _, c := range wm.clients {
			wm.resize(c)
		}
		return nil
	}
	c := wm.GetClient(e.Window)
	if c == nil {
		return nil
	}
	if e.BorderWidth != wm.borderWidth {
		xproto.ConfigureWindow(wm.xc, e.Window, xproto.ConfigWindowBorderWidth,
			[]uint32{uint32(wm.borderWidth)})
	}
	// A client that moved or resized itself behind our back gets its
	// enforced geometry reasserted.
	if e.X != c.X || e.Y != c.Y || e.Width != c.Width || e.Height != c.Height {
		wm.resize(c)
	}
	return nil
}

func (wm *WM) handlePropertyNotify(e xproto.PropertyNotifyEvent) error {
	if e.Window == wm.xroot.Root {
		if e.Atom == atomCommand {
			return wm.runCommand()
		}
		return nil
	}
	c := wm.GetClient(e.Window)
	if c == nil {
		return nil
	}
	if e.Atom != xproto.AtomWmNormalHints && e.Atom != atomNetWMWindowType {
		return nil
	}
	c.fresh = false
	wm.reclassify(c)
	return nil
}

func (wm *WM) handleButtonPress(e xproto.ButtonPressEvent) error {
	wm.pop(e.Event)
	// The passive sync grab exists only so we can raise on click;
	// replay the click so the client still receives it.
	xproto.AllowEvents(wm.xc, xproto.AllowReplayPointer, xproto.TimeCurrentTime)
	return nil
}

func (wm *WM) handleUnmapNotify(e xproto.UnmapNotifyEvent) error {
	c := wm.GetClient(e.Window)
	if c == nil {
		return nil
	}
	wasHead := wm.clients[0] == c
	wm.removeClient(e.Window)
	if len(wm.clients) == 0 {
		wm.clearActiveWindow()
	} else if wasHead {
		wm.focus(wm.clients[0].Window)
	}
	wm.setWMState(e.Window, stateWithdrawn)
	xproto.DeleteProperty(wm.xc, e.Window, atomNetWMDesktop)
	return nil
}

func (wm *WM) handleClientMessage(e xproto.ClientMessageEvent) error {
	c := wm.GetClient(e.Window)
	if c == nil {
		return nil
	}
	switch e.Type {
	case atomNetActiveWindow:
		wm.pop(e.Window)
	case atomNetCloseWindow:
		wm.closeClient(e.Window)
	case atomNetRequestFrameExtents:
		wm.setFrameExtents(e.Window)
	case atomNetWMState:
		// Compatibility quirk: a client that maps floating and
		// immediately asks for fullscreen expects to win. Honor the
		// request only right after the map, never later.
		if !c.fresh || e.Format != 32 {
			return nil
		}
		const (
			netWMStateAdd    = 1
			netWMStateToggle = 2
		)
		d := e.Data.Data32
		if len(d) < 3 || (d[0] != netWMStateAdd && d[0] != netWMStateToggle) {
			return nil
		}
		if xproto.Atom(d[1]) != atomNetWMStateFullscreen &&
			xproto.Atom(d[2]) != atomNetWMStateFullscreen {
			return nil
		}
		c.fullscreen = true
		wm.resize(c)
	}
	return nil
}

// handleFocusIn refuses focus theft: input focus always belongs to the
// stacking head, and anything else gets refocused immediately.
func (wm *WM) handleFocusIn(e xproto.FocusInEvent) error {
	if len(wm.clients) > 0 && e.Event != wm.clients[0].Window {
		wm.focus(wm.clients[0].Window)
	}
	return nil
}
