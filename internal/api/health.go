package api

import (
	"net/http"

	"github.com/banshee-data/statebridge/internal/httputil"
	"github.com/banshee-data/statebridge/internal/seriallink"
	"github.com/banshee-data/statebridge/internal/version"
)

// HealthResponse reports process and serial link health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Ready   bool              `json:"ready"`
	Serial  seriallink.Status `json:"serial"`
	Init    InitResult        `json:"init"`
	Version version.Info      `json:"version"`
}

func (s *Server) health() HealthResponse {
	st := s.link.Status()
	return HealthResponse{
		Status:  httputil.StatusOK,
		Ready:   st.Available(),
		Serial:  st,
		Init:    s.initRes,
		Version: version.Get(),
	}
}

// handleHealth always answers 200 while the process can serve requests;
// degraded serial state is reported in the body, not the status code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.health())
}

// handleReady answers 503 until the serial link is open.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	h := s.health()
	if !h.Ready {
		h.Status = httputil.StatusError
		httputil.WriteJSON(w, http.StatusServiceUnavailable, h)
		return
	}
	httputil.WriteJSONOK(w, h)
}
