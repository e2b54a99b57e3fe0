package recordserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/record"
)

const maxBodySize = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMetricsHandler serves h at /metrics, typically promhttp.HandlerFor
// on the registry the Metrics were registered with.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithChangeHook calls fn after every successful PUT or DELETE.
func WithChangeHook(fn func(model, id string, deleted bool)) Option {
	return func(s *Server) {
		s.onChange = fn
	}
}

// Server serves records from a Backend over HTTP.
type Server struct {
	backend        Backend
	logger         *slog.Logger
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	onChange       func(model, id string, deleted bool)
	router         chi.Router
}

// New creates a Server for backend.
func New(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	r.Get("/{model}", s.handleList)
	r.Get("/{model}/{id}", s.handleGet)
	r.Put("/{model}/{id}", s.handlePut)
	r.Delete("/{model}/{id}", s.handleDelete)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.RecordRequest(r.Method, strconv.Itoa(status), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.backend.List(r.Context(), chi.URLParam(r, "model"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.backend.Get(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	fields := record.Record{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			http.Error(w, "body must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	model, id := chi.URLParam(r, "model"), chi.URLParam(r, "id")
	rec, err := s.backend.Put(r.Context(), model, id, fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
	s.changed(model, id, false)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	model, id := chi.URLParam(r, "model"), chi.URLParam(r, "id")
	if err := s.backend.Delete(r.Context(), model, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	s.changed(model, id, true)
}

func (s *Server) changed(model, id string, deleted bool) {
	if s.onChange != nil {
		s.onChange(model, id, deleted)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.logger.Error("backend error", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
