// Package adminsrv is the participant daemon's admin/metrics HTTP
// server, adapted from the teacher's pkg/admin: the same
// /metrics + /ping + /ready + optional /debug/pprof handler shape, but
// readiness and a new /debug/participant endpoint are now backed by a
// live snapshot of the local participant's discovery state rather than
// a bare readiness bool, so an operator curling this server sees RTPS
// state, not just a liveness bit.
package adminsrv

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is a point-in-time snapshot of the local participant's
// discovery state, polled by StatusFunc on every /ready and
// /debug/participant request.
type Status struct {
	Enabled                bool `json:"enabled"`
	DiscoveredParticipants int  `json:"discoveredParticipants"`
	MatchedEndpoints       int  `json:"matchedEndpoints"`
}

// StatusFunc reports the current Status; it is called on every request
// to /ready and /debug/participant, so it must be cheap and safe for
// concurrent use (typically backed by atomics the daemon updates from
// its discovery callbacks).
type StatusFunc func() Status

type handler struct {
	promHandler http.Handler
	enablePprof bool
	status      StatusFunc
}

// NewServer returns an initialized *http.Server listening on addr,
// serving Prometheus metrics, a liveness ping, a readiness probe that
// reports true once status().Enabled is set, and a /debug/participant
// endpoint that JSON-encodes the full status snapshot.
func NewServer(addr string, enablePprof bool, status StatusFunc) *http.Server {
	h := &handler{
		promHandler: promhttp.Handler(),
		enablePprof: enablePprof,
		status:      status,
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	debugPathPrefix := "/debug/pprof/"
	if h.enablePprof && strings.HasPrefix(req.URL.Path, debugPathPrefix) {
		switch req.URL.Path {
		case fmt.Sprintf("%scmdline", debugPathPrefix):
			pprof.Cmdline(w, req)
		case fmt.Sprintf("%sprofile", debugPathPrefix):
			pprof.Profile(w, req)
		case fmt.Sprintf("%strace", debugPathPrefix):
			pprof.Trace(w, req)
		case fmt.Sprintf("%ssymbol", debugPathPrefix):
			pprof.Symbol(w, req)
		default:
			pprof.Index(w, req)
		}
		return
	}
	switch req.URL.Path {
	case "/metrics":
		h.promHandler.ServeHTTP(w, req)
	case "/ping":
		h.servePing(w)
	case "/ready":
		h.serveReady(w)
	case "/debug/participant":
		h.serveParticipantStatus(w)
	default:
		http.NotFound(w, req)
	}
}

func (h *handler) servePing(w http.ResponseWriter) {
	w.Write([]byte("pong\n"))
}

func (h *handler) current() Status {
	if h.status == nil {
		return Status{}
	}
	return h.status()
}

func (h *handler) serveReady(w http.ResponseWriter) {
	if !h.current().Enabled {
		http.Error(w, "not ready\n", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok\n"))
}

// serveParticipantStatus reports the live discovery snapshot as JSON,
// grounded on the same json.Marshal-then-write response pattern the
// teacher's webhook server uses.
func (h *handler) serveParticipantStatus(w http.ResponseWriter) {
	body, err := json.Marshal(h.current())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
