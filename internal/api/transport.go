package api

import (
	"encoding/json"
	"net/http"

	"github.com/banshee-data/statebridge/internal/httputil"
)

// valueField is the request field carrying the desired state, in both the
// JSON body and the query string.
const valueField = "value"

const maxBodyBytes = 1 << 20

// Transport labels used in metrics.
const (
	transportJSON  = "json"
	transportQuery = "query"
)

// handleState serves POST /state (JSON body) and GET /state?value=N. The
// adapters only extract the raw value; validation belongs to the translator.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var (
		raw       any
		transport string
	)
	switch r.Method {
	case http.MethodPost:
		raw, transport = extractJSONValue(w, r), transportJSON
	case http.MethodGet:
		raw, transport = extractQueryValue(r), transportQuery
	default:
		httputil.MethodNotAllowed(w)
		return
	}

	res := s.Handle(r.Context(), raw)
	s.metrics.ObserveCommand(res.Outcome.String(), transport)
	s.writeResult(w, res)
}

// extractJSONValue returns the "value" member of a JSON object body. A body
// that is missing, malformed or not an object yields nil, which the
// translator reports as a missing value. Numbers are kept as json.Number so
// large integers survive intact.
func extractJSONValue(w http.ResponseWriter, r *http.Request) any {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var req map[string]any
	if err := dec.Decode(&req); err != nil {
		return nil
	}
	return req[valueField]
}

// extractQueryValue returns the "value" query parameter, or nil when the
// parameter is absent entirely.
func extractQueryValue(r *http.Request) any {
	q := r.URL.Query()
	if !q.Has(valueField) {
		return nil
	}
	return q.Get(valueField)
}
