// Package health serves liveness, readiness, Prometheus metrics and the
// latest scored races over HTTP.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/metrics"
	"github.com/yourusername/paddock-parser/internal/models"
)

const (
	defaultPort     = 8080
	pingTimeout     = 3 * time.Second
	shutdownTimeout = 5 * time.Second
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ResultsProvider exposes the most recent scored races.
type ResultsProvider interface {
	Records() []models.ScoreRecord
	UpdatedAt() time.Time
}

// HealthResponse is the body of /health and /live.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse is the body of /ready.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// ResultsResponse is the body of /results.
type ResultsResponse struct {
	UpdatedAt string               `json:"updated_at,omitempty"`
	Count     int                  `json:"count"`
	Results   []models.ScoreRecord `json:"results"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Port        int
	Logger      logrus.FieldLogger
	DB          DatabasePinger
	Results     ResultsProvider
}

// readinessCheck reports a status string and whether it should fail /ready.
type readinessCheck struct {
	name string
	run  func(ctx context.Context) (status string, healthy bool)
}

// Server exposes the pipeline's operational endpoints.
type Server struct {
	cfg     Config
	logger  logrus.FieldLogger
	checks  []readinessCheck
	ready   atomic.Bool
	httpSrv *http.Server
	now     func() time.Time
}

// NewServer creates a server. A zero port means 8080.
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger.WithField("component", "health"),
		now:    time.Now,
	}
	s.checks = append(s.checks, readinessCheck{name: "service", run: s.checkService})
	if cfg.DB != nil {
		s.checks = append(s.checks, readinessCheck{name: "database", run: s.checkDatabase})
	}
	if cfg.Results != nil {
		s.checks = append(s.checks, readinessCheck{name: "last_report", run: s.checkLastReport})
	}
	return s
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/results", s.handleResults)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start listens in the background and shuts down when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.cfg.Port,
			"service": s.cfg.ServiceName,
		}).Info("Health server listening")

		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Health server stopped unexpectedly")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("Health server shutdown failed")
		}
	}()

	return nil
}

// Shutdown stops the listener, waiting briefly for in-flight requests.
func (s *Server) Shutdown() error {
	if s.httpSrv == nil {
		return nil
	}
	s.logger.Info("Health server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) checkService(context.Context) (string, bool) {
	if !s.IsReady() {
		return "not_ready", false
	}
	return "ok", true
}

func (s *Server) checkDatabase(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.cfg.DB.Ping(ctx); err != nil {
		return fmt.Sprintf("error: %v", err), false
	}
	return "ok", true
}

// checkLastReport is informational: a service that has not finished a run
// yet is still ready.
func (s *Server) checkLastReport(context.Context) (string, bool) {
	updated := s.cfg.Results.UpdatedAt()
	if updated.IsZero() {
		return "pending", true
	}
	return fmt.Sprintf("%s ago", s.now().Sub(updated).Truncate(time.Second)), true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Debug("Failed to write response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	response := ReadyResponse{
		Status:  "ok",
		Service: s.cfg.ServiceName,
		Checks:  make(map[string]string, len(s.checks)),
	}
	code := http.StatusOK

	for _, c := range s.checks {
		status, healthy := c.run(r.Context())
		response.Checks[c.name] = status
		if !healthy {
			response.Status = "not_ready"
			code = http.StatusServiceUnavailable
		}
	}

	response.Duration = s.now().Sub(start).String()
	s.writeJSON(w, code, response)
}

// handleResults serves the latest scored races. ?limit=N truncates.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Results == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "results not available"})
		return
	}

	records := s.cfg.Results.Records()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}
	if records == nil {
		records = []models.ScoreRecord{}
	}

	response := ResultsResponse{Count: len(records), Results: records}
	if updated := s.cfg.Results.UpdatedAt(); !updated.IsZero() {
		response.UpdatedAt = updated.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, response)
}
