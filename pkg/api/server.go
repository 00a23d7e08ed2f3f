package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/enforcer"
	"github.com/cuemby/bastion/pkg/log"
	"github.com/cuemby/bastion/pkg/metrics"
	"github.com/cuemby/bastion/pkg/policy"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/storage"
)

// DefaultSocketPath is where the daemon listens when no override is
// given.
const DefaultSocketPath = "/run/bastion/bastion.sock"

// Server is the control surface: the HTTP/JSON rendition of the table
// contract, served on a local unix socket. Out-of-process collaborators
// (OCI hook, operators) populate and read the tables through it.
type Server struct {
	state    *state.State
	store    storage.Store
	enf      *enforcer.Enforcer
	resolver *policy.Resolver
	router   *mux.Router
	http     *http.Server
	logger   zerolog.Logger
}

// NewServer creates a control server over the shared state. store may be
// nil; registrations are then volatile.
func NewServer(st *state.State, store storage.Store, enf *enforcer.Enforcer) *Server {
	s := &Server{
		state:    st,
		store:    store,
		enf:      enf,
		resolver: policy.NewResolver(st),
		logger:   log.WithComponent("api"),
	}

	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/containers", s.handleRegisterContainer).Methods(http.MethodPost)
	v1.HandleFunc("/containers", s.handleListContainers).Methods(http.MethodGet)
	v1.HandleFunc("/containers/{id:[0-9]+}", s.handleUnregisterContainer).Methods(http.MethodDelete)
	v1.HandleFunc("/processes", s.handleBindProcess).Methods(http.MethodPost)
	v1.HandleFunc("/processes/{pid:[0-9]+}", s.handleUnbindProcess).Methods(http.MethodDelete)
	v1.HandleFunc("/policy/{pid:[0-9]+}", s.handleResolvePolicy).Methods(http.MethodGet)
	v1.HandleFunc("/check", s.handleCheck).Methods(http.MethodPost)
	v1.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.router = r
	return s
}

// Router exposes the handler tree for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start listens on the unix socket and serves until Stop. The socket is
// owner-only: anyone who can write it can rewrite policy.
func (s *Server) Start(socketPath string) error {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	// A stale socket from an unclean shutdown blocks the bind.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	s.http = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("socket", socketPath).Msg("Control API listening")
	go func() {
		if err := s.http.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Control API serve failed")
		}
	}()
	return nil
}

// Stop shuts the server down, draining in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.APIRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, r.Method)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
