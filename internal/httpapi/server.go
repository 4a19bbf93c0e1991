// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/observability"
)

// Server serves the REST API.
type Server struct {
	addr       string
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer assembles the API router. metrics may be nil, in which case HTTP
// metrics are not recorded.
func NewServer(addr string, authSvc AuthService, accounts AccountService, orgs OrgService, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if accounts == nil {
		return nil, oops.Errorf("account service is required")
	}
	if orgs == nil {
		return nil, oops.Errorf("org service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		authSvc:  authSvc,
		accounts: accounts,
		orgs:     orgs,
		logger:   logger,
		metrics:  metrics,
	}

	return &Server{
		addr:    addr,
		handler: newRouter(h, authSvc, logger, metrics),
		logger:  logger,
	}, nil
}

// newRouter wires middleware and routes.
func newRouter(h *handlers, authSvc AuthService, logger *slog.Logger, metrics *observability.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument(logger, metrics))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/token", h.token)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate(authSvc, logger))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.currentUser)
				r.Patch("/me", h.updateCurrentUser)
				r.Get("/{userID}", h.userByID)
			})

			r.Route("/orgs", func(r chi.Router) {
				r.Get("/", h.listOrganizations)
				r.Post("/", h.createOrganization)

				r.Route("/{slug}", func(r chi.Router) {
					r.Get("/", h.getOrganization)
					r.Patch("/", h.updateOrganization)
					r.Delete("/", h.deleteOrganization)

					r.Route("/members", func(r chi.Router) {
						r.Get("/", h.listMembers)
						r.Post("/", h.addMember)
						r.Patch("/{userID}", h.updateMemberRole)
						r.Delete("/{userID}", h.removeMember)
					})
				})
			})
		})
	})

	return r
}

// Handler returns the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving the API. It returns an error channel that receives
// any serve error after startup; the channel is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
