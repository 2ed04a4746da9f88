package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

// APIServer exposes a read-only view of the manager plus command
// injection over HTTP. It never touches the registry: reads go through
// the EWMH root properties and writes through the command mailbox, so
// the WM core stays single-threaded.
type APIServer struct {
	server *http.Server
	wm     *WM

	streams *streamSet
}

type apiClient struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func jsonResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	slog.Debug("api", "status", status, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	e.Encode(data)
}

func NewAPIServer(wm *WM, listenAddr string) (as *APIServer) {
	router := mux.NewRouter()
	server := &http.Server{
		Addr:           listenAddr,
		Handler:        router,
		ReadTimeout:    1 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	router.HandleFunc("/clients/", func(w http.ResponseWriter, r *http.Request) {
		items, err := as.listClients()
		if err != nil {
			jsonResponse(w, r, http.StatusBadGateway, nil)
			return
		}
		jsonResponse(w, r, 200,
			map[string]interface{}{
				"items": items,
			},
		)
	}).Methods("GET")

	router.HandleFunc("/screen/", func(w http.ResponseWriter, r *http.Request) {
		width, height, err := as.desktopGeometry()
		if err != nil {
			jsonResponse(w, r, http.StatusBadGateway, nil)
			return
		}
		jsonResponse(w, r, 200,
			map[string]interface{}{
				"width":  width,
				"height": height,
			},
		)
	}).Methods("GET")

	router.HandleFunc("/command/", func(w http.ResponseWriter, r *http.Request) {
		d := json.NewDecoder(r.Body)
		var data struct {
			Cmd string `json:"cmd"`
		}
		if err := d.Decode(&data); err != nil {
			jsonResponse(w, r, http.StatusUnprocessableEntity, nil)
			return
		}
		switch data.Cmd {
		case "close", "last", "quit":
		default:
			jsonResponse(w, r, http.StatusUnprocessableEntity, nil)
			return
		}
		if err := sendCommand(as.wm.xc, as.wm.xroot.Root, data.Cmd); err != nil {
			jsonResponse(w, r, http.StatusBadGateway, nil)
			return
		}
		jsonResponse(w, r, http.StatusAccepted, nil)
	}).Methods("POST")

	router.HandleFunc("/events", makeWSHandler(func(ctx context.Context, c *websocket.Conn) {
		as.streamEvents(ctx, c)
	}))

	router.PathPrefix("/").Handler(http.NotFoundHandler())
	as = &APIServer{
		server:  server,
		wm:      wm,
		streams: newStreamSet(),
	}
	return as
}

func (as *APIServer) Start() {
	slog.Info("api listening", "addr", "http://"+as.server.Addr)
	if err := as.server.ListenAndServe(); err != nil {
		slog.Error("api server", "error", err)
	}
}

// listClients reads the published stacking list back from the root
// window and returns it top-to-bottom.
func (as *APIServer) listClients() ([]apiClient, error) {
	xc, root := as.wm.xc, as.wm.xroot.Root
	prop, err := xproto.GetProperty(xc, false, root, atomNetClientListStacking,
		xproto.AtomWindow, 0, 4096).Reply()
	if err != nil {
		return nil, err
	}
	active := uint32(0)
	if ap, err := xproto.GetProperty(xc, false, root, atomNetActiveWindow,
		xproto.AtomWindow, 0, 1).Reply(); err == nil && len(ap.Value) >= 4 {
		active = get32(ap.Value)
	}
	bottomToTop := u32slice(prop.Value)
	items := make([]apiClient, 0, len(bottomToTop))
	for i := len(bottomToTop) - 1; i >= 0; i-- {
		id := bottomToTop[i]
		items = append(items, apiClient{
			ID:     id,
			Name:   windowName(as.wm, xproto.Window(id)),
			Active: id == active,
		})
	}
	return items, nil
}

func (as *APIServer) desktopGeometry() (uint32, uint32, error) {
	prop, err := xproto.GetProperty(as.wm.xc, false, as.wm.xroot.Root,
		atomNetDesktopGeometry, xproto.AtomCardinal, 0, 2).Reply()
	if err != nil {
		return 0, 0, err
	}
	if len(prop.Value) < 8 {
		return 0, 0, nil
	}
	return get32(prop.Value), get32(prop.Value[4:]), nil
}

func windowName(wm *WM, w xproto.Window) string {
	prop, err := xproto.GetProperty(wm.xc, false, w, xproto.AtomWmName,
		xproto.GetPropertyTypeAny, 0, 64).Reply()
	if err != nil || prop == nil {
		return ""
	}
	return string(prop.Value)
}
