package main

import (
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// The remote control channel is a single text property on the root
// window: writers set it, the resulting PropertyNotify lands in
// runCommand. There is no queue; when several writers race, the last
// write observed wins.
const (
	commandAtomName = "STACKWM_CMD"
	// commandMaxLen bounds how much of the property is read; longer
	// payloads are truncated, never overread.
	commandMaxLen = 16
)

// decodeCommand turns raw property bytes into a command string,
// truncating oversized payloads and stopping at the first NUL.
func decodeCommand(value []byte) string {
	if len(value) > commandMaxLen {
		value = value[:commandMaxLen]
	}
	for i, b := range value {
		if b == 0 {
			return string(value[:i])
		}
	}
	return string(value)
}

// runCommand reads and executes the mailbox property. Unrecognized
// payloads are ignored.
func (wm *WM) runCommand() error {
	prop, err := xproto.GetProperty(wm.xc, false, wm.xroot.Root, atomCommand,
		xproto.AtomString, 0, (commandMaxLen+3)/4).Reply()
	if err != nil || prop == nil {
		return nil
	}
	switch cmd := decodeCommand(prop.Value); cmd {
	case "close":
		if len(wm.clients) > 0 {
			wm.closeClient(wm.clients[0].Window)
		}
	case "last":
		if len(wm.clients) > 1 {
			wm.pop(wm.clients[1].Window)
		}
	case "quit":
		return errQuit
	default:
		slog.Debug("ignoring unknown remote command", "cmd", cmd)
	}
	return nil
}

// sendCommand writes cmd into the root mailbox property. Used by the
// one-argument CLI mode and by the signal handler, where the property
// write doubles as the event that wakes the blocked event loop.
func sendCommand(xc *xgb.Conn, root xproto.Window, cmd string) error {
	atom := getAtom(xc, commandAtomName)
	return xproto.ChangePropertyChecked(xc, xproto.PropModeReplace, root, atom,
		xproto.AtomString, 8, uint32(len(cmd)), []byte(cmd)).Check()
}
