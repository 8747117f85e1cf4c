// Package devserver runs the development HTTP server of a generated project.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fentz26/thiz/internal/metrics"
	"github.com/fentz26/thiz/internal/portbind"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Server serves the sample API of a generated project.
type Server struct {
	env       Env
	binder    *portbind.Binder
	metrics   *metrics.Collector
	registry  *prometheus.Registry
	log       logrus.FieldLogger
	started   time.Time
	dbTimeout time.Duration

	mu       sync.RWMutex
	database string
	mongo    *mongo.Client
	port     int
}

// New creates a dev server. The binder's OnAttempt hook is wired to the
// server's metrics.
func New(env Env, binder *portbind.Binder, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	s := &Server{
		env:       env,
		binder:    binder,
		metrics:   collector,
		registry:  registry,
		log:       log,
		started:   time.Now(),
		dbTimeout: defaultServerSelectionTimeout,
		database:  dbUnchecked,
	}

	prev := binder.OnAttempt
	binder.OnAttempt = func(a portbind.Attempt) {
		collector.RecordBindAttempt(a)
		if prev != nil {
			prev(a)
		}
	}
	return s
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/sample", s.handleSample)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s.instrument(mux)
}

// Run connects the database, binds a port and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	db := s.connectDatabase(ctx)
	s.mu.Lock()
	s.database = db
	s.mu.Unlock()

	srv, err := s.binder.Start(ctx, s.Handler(), s.env.Port)
	if err != nil {
		if dbErr := s.closeDatabase(context.Background()); dbErr != nil {
			s.log.WithError(dbErr).Warn("MongoDB disconnect failed")
		}
		return err
	}
	s.metrics.SetBoundPort(srv.Port())
	s.mu.Lock()
	s.port = srv.Port()
	s.mu.Unlock()
	s.log.Infof("Server running on port %d", srv.Port())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := <-srv.Done(); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if dbErr := s.closeDatabase(shutdownCtx); dbErr != nil {
			s.log.WithError(dbErr).Warn("MongoDB disconnect failed")
		}
		return err
	})
	return g.Wait()
}

// Port returns the bound port, or 0 before Run has bound one.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "THIZ is running!",
		"routes": map[string]string{
			"home":   "/",
			"health": "/health",
			"sample": "/api/sample",
		},
	})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Database  string  `json:"database"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	db := s.database
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Uptime:    time.Since(s.started).Seconds(),
		Database:  db,
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sample route is working"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request in "METHOD path status duration" form and
// records it in the metrics collector.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.RecordRequest(routeOf(r.URL.Path), rec.status, elapsed.Seconds())
		s.log.Infof("%s %s %d %.3f ms", r.Method, r.URL.Path, rec.status, float64(elapsed.Microseconds())/1000)
	})
}

// routeOf bounds metric label cardinality to known routes.
func routeOf(path string) string {
	switch path {
	case "/", "/health", "/api/sample", "/metrics":
		return path
	default:
		return "other"
	}
}
