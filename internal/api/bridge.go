package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/banshee-data/statebridge/internal/command"
	"github.com/banshee-data/statebridge/internal/config"
	"github.com/banshee-data/statebridge/internal/httputil"
	"github.com/banshee-data/statebridge/internal/monitoring"
	"github.com/banshee-data/statebridge/internal/seriallink"
)

// Outcome classifies one bridge operation.
type Outcome int

const (
	ResultOK Outcome = iota
	ResultInvalidInput
	ResultLinkUnavailable
	ResultWriteFailed
)

func (o Outcome) String() string {
	switch o {
	case ResultOK:
		return monitoring.ResultOK
	case ResultInvalidInput:
		return monitoring.ResultInvalidInput
	case ResultLinkUnavailable:
		return monitoring.ResultLinkUnavailable
	case ResultWriteFailed:
		return monitoring.ResultWriteFailed
	default:
		return "unknown"
	}
}

// Result is the outcome of one request. Detail is set for every outcome
// except ResultOK.
type Result struct {
	Outcome Outcome
	Value   command.Value
	Detail  string
}

// StateResponse is the body of a successful (or degraded) state update.
type StateResponse struct {
	Status   string         `json:"status"`
	Value    *command.Value `json:"value,omitempty"`
	Degraded bool           `json:"degraded,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// Handle runs one state update independent of transport: translate raw, then
// write it to the link. It never panics on bad input and never returns an
// error; every failure is folded into the Result.
func (s *Server) Handle(ctx context.Context, raw any) Result {
	id := RequestID(ctx)

	v, err := command.Translate(raw)
	if err != nil {
		monitoring.Logf("state rejected: %v (serial available: %t) id=%s", err, s.link.IsAvailable(), id)
		return Result{Outcome: ResultInvalidInput, Detail: err.Error()}
	}

	monitoring.Logf("state received: %d (serial available: %t) id=%s", v, s.link.IsAvailable(), id)

	start := time.Now()
	err = s.link.Write(v)
	switch {
	case err == nil:
		s.metrics.ObserveWrite(time.Since(start))
		return Result{Outcome: ResultOK, Value: v}
	case errors.Is(err, seriallink.ErrLinkUnavailable):
		monitoring.Logf("serial link unavailable, state %d not sent id=%s", v, id)
		return Result{Outcome: ResultLinkUnavailable, Value: v, Detail: err.Error()}
	default:
		s.metrics.ObserveWrite(time.Since(start))
		monitoring.Logf("serial write of state %d failed: %v id=%s", v, err, id)
		return Result{Outcome: ResultWriteFailed, Value: v, Detail: err.Error()}
	}
}

// writeResult maps a Result onto the HTTP response.
func (s *Server) writeResult(w http.ResponseWriter, res Result) {
	switch res.Outcome {
	case ResultOK:
		v := res.Value
		httputil.WriteJSONOK(w, StateResponse{Status: httputil.StatusOK, Value: &v})
	case ResultInvalidInput:
		httputil.BadRequest(w, res.Detail)
	case ResultLinkUnavailable:
		if s.policy == config.PolicyFail {
			httputil.ServiceUnavailable(w, res.Detail)
			return
		}
		v := res.Value
		httputil.WriteJSONOK(w, StateResponse{
			Status:   httputil.StatusOK,
			Value:    &v,
			Degraded: true,
			Message:  res.Detail,
		})
	default:
		httputil.InternalServerError(w, res.Detail)
	}
}
