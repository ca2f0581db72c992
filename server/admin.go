package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminServer is a small gorilla/mux HTTP surface exposing health,
// Prometheus metrics, and a JSON snapshot of table sizes for operators.
// It is entirely separate from the wire protocol itself: nothing here is
// reachable through a Request variant.
type AdminServer struct {
	node *Node
	srv  *http.Server
}

func NewAdminServer(node *Node) *AdminServer {
	r := mux.NewRouter()
	a := &AdminServer{node: node}

	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/debug/state", a.handleState).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(node.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	a.srv = &http.Server{
		Addr:              node.cfg.AdminAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a
}

func (a *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type stateSnapshot struct {
	UptimeNS  int64 `json:"uptime_ns"`
	OpenFiles int   `json:"open_files"`
	LiveProcs int   `json:"live_procs"`
	Pending   int   `json:"pending_asks"`
}

func (a *AdminServer) handleState(w http.ResponseWriter, r *http.Request) {
	snap := stateSnapshot{
		UptimeNS:  a.node.Uptime().Nanoseconds(),
		OpenFiles: a.node.files.OpenCount(),
		LiveProcs: a.node.procs.LiveCount(),
		Pending:   a.node.calls.Pending(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// ListenAndServe blocks serving admin HTTP until the listener is closed.
func (a *AdminServer) ListenAndServe() error {
	return a.srv.ListenAndServe()
}

// Close shuts down the admin HTTP listener.
func (a *AdminServer) Close() error {
	return a.srv.Close()
}
