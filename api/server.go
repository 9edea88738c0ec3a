package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prizepool/application"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func() error

// Server exposes the pool's execute and query calls over HTTP
type Server struct {
	handler application.MessageHandler
	health  map[string]HealthCheck
	http    *http.Server
}

// NewServer creates a server listening on addr. health checks are reported by /health.
func NewServer(handler application.MessageHandler, addr string, health map[string]HealthCheck) *Server {
	s := &Server{handler: handler, health: health}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	root := mux.NewRouter()
	s.Mount(root, "/")
	return root
}

// Mount registers the pool routes under pathPrefix
func (s *Server) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/execute").
		Methods(http.MethodPost).
		Name("pool_execute").
		HandlerFunc(WrapHandlerFunc(s.handleExecute))
	sub.Path("/query").
		Methods(http.MethodPost).
		Name("pool_query").
		HandlerFunc(WrapHandlerFunc(s.handleQuery))
	sub.Path("/lottery").
		Methods(http.MethodGet).
		Name("pool_lottery_info").
		HandlerFunc(WrapHandlerFunc(s.handleLotteryInfo))
	sub.Path("/health").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(WrapHandlerFunc(s.handleHealth))
}

func (s *Server) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var body application.ExecuteRequest
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(fmt.Errorf("body: %w", err))
	}
	answer, err := s.handler.Execute(req.Context(), body)
	if err != nil {
		return err
	}
	return WriteJSON(w, answer)
}

func (s *Server) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var body application.QueryRequest
	if err := ParseJSON(req.Body, &body); err != nil {
		return BadRequest(fmt.Errorf("body: %w", err))
	}
	answer, err := s.handler.Query(req.Context(), body)
	if err != nil {
		return err
	}
	return WriteJSON(w, answer)
}

func (s *Server) handleLotteryInfo(w http.ResponseWriter, req *http.Request) error {
	answer, err := s.handler.Query(req.Context(), application.QueryRequest{
		Msg: application.QueryMsg{LotteryInfo: &application.Empty{}},
	})
	if err != nil {
		return err
	}
	return WriteJSON(w, answer.LotteryInfo)
}

// HealthStatus is the body of /health
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	status := HealthStatus{Status: "ok", Checks: map[string]string{}}
	for name, check := range s.health {
		if err := check(); err != nil {
			status.Status = "degraded"
			status.Checks[name] = err.Error()
			continue
		}
		status.Checks[name] = "ok"
	}
	if status.Status != "ok" {
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return WriteJSON(w, status)
}

// Start serves in the background and returns a function that shuts the server down
func (s *Server) Start(ctx context.Context) func() {
	go func() {
		log.WithField("addr", s.http.Addr).Info("HTTP API listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP API stopped: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Failed to shut down HTTP API: %v", err)
		}
	}
}
