// Package web serves mounted tables over HTTP. Pages embed the table
// markup; htmx posts header and row interactions back to the server and
// swaps in the re-rendered table.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/structtable/internal/config"
	"github.com/JonMunkholm/structtable/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for mounted tables.
type Server struct {
	cfg     *config.Config
	catalog *Catalog
	router  *chi.Mux
	server  *http.Server

	stopBackground context.CancelFunc
}

// NewServer creates a Server for the tables in catalog.
func NewServer(cfg *config.Config, catalog *Catalog) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		catalog:        catalog,
		router:         chi.NewRouter(),
		stopBackground: cancel,
	}
	s.setupMiddleware(ctx)
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route(TablesPrefix+"/{table}", func(r chi.Router) {
		r.Use(s.tableContext)

		r.Get("/", s.handleTable)
		r.Post("/sort/{column}", s.handleSort)
		r.Get("/rows/{key}", s.handleRowDetail)
		r.Post("/rows/{key}/click", s.handleRowClick)
		r.Post("/rows/{key}/select", s.handleRowSelect)
		r.Post("/select-all", s.handleSelectAll)
		r.Post("/clear", s.handleClearSelection)
		r.Get("/selection", s.handleSelection)
	})
}

// Start begins listening for HTTP requests on the configured address.
// It returns nil once Shutdown has been called.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr, "tables", s.catalog.Names())
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopBackground()
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
