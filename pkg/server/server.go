// Package server exposes the conversion pipeline over HTTP.
//
// Routes:
//
//	GET|POST /healthcheck      liveness probe
//	GET      /stats            event counters, when enabled
//	POST     /save-scene       store a training scene, returns a session id
//	POST     /convert/primary  text request → new scene
//	POST     /convert/edit     text request + scene → edited scene
//	POST     /dsl/encode       scene → DSL text
//	POST     /dsl/decode       DSL text → scene
//	POST     /diff             two scenes → patch
//	POST     /apply            scene + patch → scene
//
// Requests that need training data name their session with a "sessionId"
// body field or the X-Session-ID header. A server started with a training
// file falls back to the session created from it.
package server

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/scenedsl/pkg/observability"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
)

// SessionHeader carries the session id when the body does not.
const SessionHeader = "X-Session-ID"

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Timeouts configures the underlying http.Server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// Server routes HTTP requests to a pipeline.Runner.
type Server struct {
	runner         *pipeline.Runner
	logger         *log.Logger
	router         chi.Router
	defaultSession atomic.Value // string
	counters       atomic.Pointer[observability.Counters]
}

// New creates a server for runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger.WithPrefix("http")}
	s.defaultSession.Store("")
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler())

	r.Get("/healthcheck", s.handleHealth)
	r.Post("/healthcheck", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/save-scene", s.handleSaveScene)
	r.Route("/convert", func(r chi.Router) {
		r.Post("/primary", s.handleConvertPrimary)
		r.Post("/edit", s.handleConvertEdit)
	})
	r.Route("/dsl", func(r chi.Router) {
		r.Post("/encode", s.handleEncode)
		r.Post("/decode", s.handleDecode)
	})
	r.Post("/diff", s.handleDiff)
	r.Post("/apply", s.handleApply)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetDefaultSession sets the session used by requests that name none.
// It is safe to call while serving.
func (s *Server) SetDefaultSession(id string) {
	s.defaultSession.Store(id)
}

// DefaultSession returns the fallback session id, if any.
func (s *Server) DefaultSession() string {
	return s.defaultSession.Load().(string)
}

// SetCounters publishes c on GET /stats. Without counters the route
// answers 404.
func (s *Server) SetCounters(c *observability.Counters) {
	s.counters.Store(c)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, t Timeouts) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  t.Read,
		WriteTimeout: t.Write,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdown := t.Shutdown
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(sctx)
}
