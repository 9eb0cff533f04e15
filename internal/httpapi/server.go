// Package httpapi serves predictions and their history as JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"raceready/internal/engine"
	"raceready/internal/logger"
	"raceready/internal/metrics"
	"raceready/internal/service"
	"raceready/internal/store"
)

const maxHistoryLimit = 1000

// Predictor is the part of service.PredictionService the API needs
type Predictor interface {
	Evaluate(ctx context.Context, asOf time.Time) (*engine.Result, error)
	Predict(ctx context.Context, asOf time.Time) (*engine.Result, error)
	History(ctx context.Context, limit int) ([]service.HistoryEntry, error)
	Snapshot(ctx context.Context, id string) (*engine.Result, error)
}

// Server holds the API dependencies
type Server struct {
	predictor    Predictor
	metrics      *metrics.Manager
	log          logger.Logger
	historyLimit int
}

// NewServer creates a server. m may be nil, in which case /metrics is absent.
func NewServer(p Predictor, m *metrics.Manager, log logger.Logger, historyLimit int) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if historyLimit <= 0 {
		historyLimit = service.DefaultHistoryLimit
	}
	return &Server{predictor: p, metrics: m, log: log.Named("http"), historyLimit: historyLimit}
}

// NewRouter registers all routes
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.HandleFunc("/api/predictions", s.getPredictions).Methods("GET")
	r.HandleFunc("/api/predictions", s.postPredictions).Methods("POST")
	r.HandleFunc("/api/predictions/history", s.getHistory).Methods("GET")
	r.HandleFunc("/api/predictions/{id}", s.getSnapshot).Methods("GET")
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
		r.Use(s.instrument)
	}

	return r
}

// Handler returns the router wrapped with access logging and panic recovery
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	var h http.Handler = s.NewRouter()
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler()(h)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// getPredictions evaluates without saving. as_of=YYYY-MM-DD replays a past
// day, counting everything recorded by the end of it.
func (s *Server) getPredictions(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of; use YYYY-MM-DD")
		return
	}

	result, err := s.predictor.Evaluate(r.Context(), asOf)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// postPredictions evaluates now and saves a snapshot
func (s *Server) postPredictions(w http.ResponseWriter, r *http.Request) {
	result, err := s.predictor.Predict(r.Context(), time.Time{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := s.predictor.History(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(entries), "items": entries})
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.predictor.Snapshot(r.Context(), id)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func parseAsOf(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(24*time.Hour - time.Second), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
