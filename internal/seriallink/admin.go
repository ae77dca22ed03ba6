package seriallink

import (
	"errors"
	"net/http"
	"strings"

	"tailscale.com/tsweb"

	"github.com/banshee-data/statebridge/internal/command"
	"github.com/banshee-data/statebridge/internal/httputil"
)

// listPorts is swapped out in tests so no host enumeration happens.
var listPorts PortLister = ListPorts

// AttachAdminRoutes attaches serial debugging endpoints under /debug/. These
// routes are only reachable from localhost or over Tailscale.
func (l *Link) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KVFunc("Serial link", func() any { return l.Status().String() })

	debug.HandleFunc("serial-status", "serial link state as JSON", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		httputil.WriteJSONOK(w, l.Status())
	})

	debug.HandleFunc("serial-ports", "serial devices detected on this host", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		ports, err := listPorts()
		if err != nil {
			httputil.InternalServerError(w, "failed to enumerate serial ports: "+err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]any{"ports": ports})
	})

	debug.HandleSilentFunc("serial-reopen", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		if err := l.Reopen(); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, ErrNoPort) {
				status = http.StatusConflict
			}
			httputil.WriteJSONError(w, status, err.Error())
			return
		}
		httputil.WriteJSONOK(w, l.Status())
	})

	// Writes a single value bypassing the public endpoint, for bench testing
	// the firmware.
	debug.HandleSilentFunc("send-command-api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		raw := strings.TrimSpace(r.FormValue("value"))
		if raw == "" {
			httputil.BadRequest(w, "missing value")
			return
		}
		v, err := command.Translate(raw)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if err := l.Write(v); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrLinkUnavailable) {
				status = http.StatusServiceUnavailable
			}
			httputil.WriteJSONError(w, status, err.Error())
			return
		}
		httputil.WriteJSONOK(w, map[string]any{"status": "ok", "value": v})
	})
}
