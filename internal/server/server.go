// Package server serves interactive tree widgets over HTTP.
//
// Every viewer gets a session holding its own widget. REST endpoints drive
// the widget (click, focus, toggle, expand and collapse all) and return
// the resulting frame; a WebSocket endpoint streams every frame and
// transform change, including the ones produced when an asynchronous load
// completes after the request that started it.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/session"
	"github.com/matzehuels/arbor/pkg/source"
)

// Source is the data every new session opens. Exactly one of Dataset and
// Loader is used: a Loader serves a lazily loaded tree whose children are
// fetched in the background.
type Source struct {
	Dataset *source.Dataset
	Loader  source.Loader
}

// Server hosts widget sessions.
type Server struct {
	cfg    *config.Config
	src    Source
	store  *session.Store[*Viewer]
	logger *log.Logger
	router chi.Router

	// ctx bounds background loads; it is cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
}

// New creates a server for src. A nil logger uses the charm default.
func New(cfg *config.Config, src Source, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		src:    src,
		store:  session.NewStore[*Viewer](cfg.Server.SessionTTL),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	s.store.SetLogger(logger)
	s.store.OnExpire = func(id string, v *Viewer) {
		v.closeSubscribers()
		logger.Debug("session closed", "session", id)
	}
	s.router = s.buildRouter()
	return s
}

// defaultRequestTimeout applies when the configuration leaves it unset.
const defaultRequestTimeout = 60 * time.Second

func (s *Server) buildRouter() chi.Router {
	timeout := s.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Server.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.store.Len(),
			"build":    buildinfo.Get(),
		})
	})
	r.Get("/", s.handleIndex)

	r.Route("/api/sessions", func(r chi.Router) {
		r.With(middleware.Timeout(timeout)).Post("/", s.handleCreate)
		r.Route("/{session}", func(r chi.Router) {
			// The WebSocket stays open past any request timeout.
			r.Get("/ws", s.handleWebSocket)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(timeout))
				r.Get("/", s.handleFrame)
				r.Delete("/", s.handleDelete)
				r.Get("/svg", s.handleSVG)
				r.Get("/dot", s.handleDOT)
				r.Post("/expand-all", s.handleExpandAll)
				r.Post("/collapse-all", s.handleCollapseAll)
				r.Post("/nodes/{node}/{action}", s.handleNodeAction)
			})
		})
	})

	return r
}

// Router returns the HTTP handler.
func (s *Server) Router() chi.Router { return s.router }

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store[*Viewer] { return s.store }

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.store.Run(s.ctx, session.DefaultCleanupInterval)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("arbor server listening", "addr", s.cfg.Server.Addr)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.cancel()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops background loads and gracefully shuts down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
