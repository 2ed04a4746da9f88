package main

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func windowsOf(clients []*Client) []xproto.Window {
	ws := make([]xproto.Window, len(clients))
	for i, c := range clients {
		ws[i] = c.Window
	}
	return ws
}

func sameWindows(a, b []xproto.Window) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertFront(t *testing.T) {
	var clients []*Client
	a := &Client{Window: 1}
	b := &Client{Window: 2}

	clients = insertFront(clients, a)
	clients = insertFront(clients, b)
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{2, 1}) {
		t.Fatalf("order = %v, want [2 1]", got)
	}

	// A duplicate map request must not register a second client.
	clients = insertFront(clients, &Client{Window: 2})
	if len(clients) != 2 {
		t.Errorf("duplicate insert grew the registry to %d", len(clients))
	}
	if clients[0] != b {
		t.Errorf("duplicate insert replaced the registered client")
	}
}

func TestRemoveWindow(t *testing.T) {
	a, b, c := &Client{Window: 1}, &Client{Window: 2}, &Client{Window: 3}
	clients := []*Client{c, b, a}

	clients, removed := removeWindow(clients, 2)
	if removed != b {
		t.Fatalf("removed = %v, want client 2", removed)
	}
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{3, 1}) {
		t.Errorf("order after remove = %v, want [3 1]", got)
	}

	clients, removed = removeWindow(clients, 42)
	if removed != nil {
		t.Errorf("removing an unknown window returned %v", removed)
	}
	if len(clients) != 2 {
		t.Errorf("removing an unknown window changed the registry")
	}
}

func TestMoveToFront(t *testing.T) {
	a, b, c := &Client{Window: 1}, &Client{Window: 2}, &Client{Window: 3}
	clients := []*Client{c, b, a}

	clients, moved := moveToFront(clients, 3)
	if moved {
		t.Errorf("raising the head reported a change")
	}
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{3, 2, 1}) {
		t.Errorf("raising the head reordered the registry: %v", got)
	}

	clients, moved = moveToFront(clients, 1)
	if !moved {
		t.Errorf("raising the bottom client reported no change")
	}
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{1, 3, 2}) {
		t.Errorf("order = %v, want [1 3 2]", got)
	}

	if _, moved = moveToFront(clients, 42); moved {
		t.Errorf("raising an unknown window reported a change")
	}
}

func TestStackingOrder(t *testing.T) {
	clients := []*Client{{Window: 3}, {Window: 2}, {Window: 1}}
	if got := stackingOrder(clients); !sameWindows(got, []xproto.Window{1, 2, 3}) {
		t.Errorf("stackingOrder = %v, want bottom-to-top [1 2 3]", got)
	}
	if got := stackingOrder(nil); len(got) != 0 {
		t.Errorf("stackingOrder(nil) = %v", got)
	}
}

// The map A, map B, last, unmap B sequence should leave A front and
// focused throughout, matching what external tools observe via the
// stacking property.
func TestMapLastUnmapSequence(t *testing.T) {
	var clients []*Client
	a := &Client{Window: 10, Normal: true}
	b := &Client{Window: 20, Normal: false, ReqW: 300, ReqH: 200}

	clients = insertFront(clients, a)
	clients = insertFront(clients, b)
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{20, 10}) {
		t.Fatalf("after maps: %v, want [20 10]", got)
	}

	if g := placeClient(a.Floating(), a.ReqW, a.ReqH, 1920, 1080, 1); g.Width != 1920 || g.Height != 1080 {
		t.Errorf("normal client not maximized: %+v", g)
	}
	if g := placeClient(b.Floating(), b.ReqW, b.ReqH, 1920, 1080, 1); g != (geometry{X: 809, Y: 439, Width: 300, Height: 200}) {
		t.Errorf("dialog not centered: %+v", g)
	}

	// Remote "last": raise the second-from-top client.
	clients, _ = moveToFront(clients, clients[1].Window)
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{10, 20}) {
		t.Fatalf("after last: %v, want [10 20]", got)
	}

	clients, _ = removeWindow(clients, 20)
	if got := windowsOf(clients); !sameWindows(got, []xproto.Window{10}) {
		t.Fatalf("after unmap: %v, want [10]", got)
	}
	if clients[0] != a {
		t.Errorf("head after unmap is not A")
	}
}
