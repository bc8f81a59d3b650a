// Package server exposes the latest readings and metrics over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	vitals "github.com/tphakala/go-bvp-vitals"
)

const readHeaderTimeout = 5 * time.Second

// ReadingView is the JSON form of a reading.
type ReadingView struct {
	Metric      string  `json:"metric"`
	Value       float64 `json:"value,omitempty"`
	Systolic    float64 `json:"systolic,omitempty"`
	Diastolic   float64 `json:"diastolic,omitempty"`
	TimestampMs int64   `json:"timestamp_ms"`
	Cycle       uint64  `json:"cycle"`
	Error       string  `json:"error,omitempty"`
}

// View converts a reading for JSON output.
func View(r vitals.Reading) ReadingView {
	v := ReadingView{
		Metric:      r.Metric.String(),
		Value:       r.Value,
		Systolic:    r.Systolic,
		Diastolic:   r.Diastolic,
		TimestampMs: r.TimestampMs,
		Cycle:       r.Cycle,
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

// Server serves GET /readings, /readings/{metric}, /healthz and /metrics.
type Server struct {
	latest *Latest
	log    *slog.Logger
	http   *http.Server
}

// New builds the server. metrics may be nil to omit /metrics.
func New(addr string, latest *Latest, metrics http.Handler, log *slog.Logger) *Server {
	s := &Server{latest: latest, log: log}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router(metrics),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) router(metrics http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/readings", s.readings).Methods(http.MethodGet)
	r.HandleFunc("/readings/{metric}", s.reading).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.log.Info("http server starting", "bind", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("http server stopping")
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) readings(w http.ResponseWriter, _ *http.Request) {
	all := s.latest.All()
	out := make([]ReadingView, len(all))
	for i, r := range all {
		out[i] = View(r)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) reading(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["metric"]
	m, ok := vitals.ParseMetric(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown metric "+name)
		return
	}

	rd, ok := s.latest.Get(m)
	if !ok {
		writeError(w, http.StatusNotFound, "no reading yet")
		return
	}
	writeJSON(w, http.StatusOK, View(rd))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
