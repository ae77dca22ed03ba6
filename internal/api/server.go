// Package api is the HTTP face of the bridge: it extracts a state value from
// the request, hands it to the command translator and the serial link, and
// maps the outcome to a JSON response.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/statebridge/internal/command"
	"github.com/banshee-data/statebridge/internal/config"
	"github.com/banshee-data/statebridge/internal/monitoring"
	"github.com/banshee-data/statebridge/internal/seriallink"
)

// ANSI escape codes for access log colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Link is the part of the serial link manager the endpoint depends on.
type Link interface {
	Write(command.Value) error
	IsAvailable() bool
	Status() seriallink.Status
}

// InitResult records what happened when the process first tried to open the
// serial link, so health reporting can show it after later transitions.
type InitResult struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type Server struct {
	link    Link
	policy  config.UnavailablePolicy
	metrics *monitoring.Metrics
	initRes InitResult
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request outcomes in m.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithInitResult attaches the startup open result to health responses.
func WithInitResult(r InitResult) Option {
	return func(s *Server) { s.initRes = r }
}

// NewServer creates a bridge endpoint writing to link. An empty policy means
// config.PolicyDegrade.
func NewServer(link Link, policy config.UnavailablePolicy, opts ...Option) *Server {
	if policy == "" {
		policy = config.PolicyDegrade
	}
	s := &Server{
		link:   link,
		policy: policy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	return mux
}

type requestIDKey struct{}

// RequestID returns the id LoggingMiddleware attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware tags each request with an id (reusing X-Request-Id when
// the client sent one) and logs method, path, status and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms id=%s",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
			id,
		)
	})
}
