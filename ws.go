package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"nhooyr.io/websocket"
)

// streamSet tracks connected event-stream consumers. broadcast never
// blocks the event loop: a consumer that cannot keep up just misses
// events.
type streamSet struct {
	mu      sync.Mutex
	streams map[chan interface{}]struct{}
}

func newStreamSet() *streamSet {
	return &streamSet{streams: map[chan interface{}]struct{}{}}
}

func (ss *streamSet) add() chan interface{} {
	ch := make(chan interface{}, 16)
	ss.mu.Lock()
	ss.streams[ch] = struct{}{}
	ss.mu.Unlock()
	return ch
}

func (ss *streamSet) remove(ch chan interface{}) {
	ss.mu.Lock()
	delete(ss.streams, ch)
	ss.mu.Unlock()
}

func (ss *streamSet) send(data interface{}) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for ch := range ss.streams {
		select {
		case ch <- data:
		default:
		}
	}
}

// broadcast fans a handled-event summary out to every /events consumer.
func (as *APIServer) broadcast(data interface{}) {
	as.streams.send(data)
}

// streamEvents writes event summaries to one websocket until the
// consumer goes away.
func (as *APIServer) streamEvents(ctx context.Context, c *websocket.Conn) {
	ch := as.streams.add()
	defer as.streams.remove(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-ch:
			bs, err := json.Marshal(data)
			if err != nil {
				slog.Debug("event marshal", "error", err)
				continue
			}
			if err := c.Write(ctx, websocket.MessageText, bs); err != nil {
				return
			}
		}
	}
}

func makeWSHandler(
	handler func(context.Context, *websocket.Conn),
) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			slog.Debug("ws connect error", "error", err)
			return
		}
		slog.Debug("ws connect", "path", r.URL.Path, "remote", r.RemoteAddr)
		defer slog.Debug("ws disconnect", "remote", r.RemoteAddr)
		defer c.Close(websocket.StatusInternalError, "")
		handler(r.Context(), c)
	}
}
