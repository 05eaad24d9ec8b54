package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/workflow"
)

// StatusFunc supplies the current workflow summary for the status endpoint.
type StatusFunc func(context.Context) workflow.StatusSummary

// Server exposes the read-only daemon status API over HTTP.
type Server struct {
	bind    string
	queue   *QueueService
	status  StatusFunc
	logger  *slog.Logger
	httpSrv *http.Server

	listener net.Listener
}

// NewServer builds an HTTP server bound to the given address. status may be
// nil when no workflow manager is attached.
func NewServer(bind string, queueSvc *QueueService, status StatusFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{bind: bind, queue: queueSvc, status: status, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/queue", s.handleQueueList)
	mux.HandleFunc("GET /api/queue/{id}", s.handleQueueItem)
	mux.HandleFunc("GET /api/jobs/{jobID}", s.handleJob)

	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins listening and serving in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return err
	}
	s.listener = listener
	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status api server stopped", logging.Error(err))
		}
	}()
	s.logger.Info("status api listening", logging.String("addr", s.Addr()))
	return nil
}

// Addr returns the bound address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		writeJSON(w, http.StatusOK, WorkflowStatus{})
		return
	}
	writeJSON(w, http.StatusOK, FromStatusSummary(s.status(r.Context())))
}

func (s *Server) handleQueueList(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := queue.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status "+raw)
			return
		}
		statuses = append(statuses, status)
	}
	items, err := s.queue.List(r.Context(), statuses...)
	if err != nil {
		s.logger.Error("queue list failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}
	if items == nil {
		items = []QueueItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue id")
		return
	}
	item, err := s.queue.Describe(r.Context(), id)
	if err != nil {
		s.logger.Error("queue describe failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobID")
	item, err := s.queue.DescribeJob(r.Context(), jobID)
	if err != nil {
		s.logger.Error("job describe failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
