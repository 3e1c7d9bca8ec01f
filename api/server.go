// Package api provides the HTTP REST API for the canvas editor.
//
// Endpoints:
//
//	GET    /health                              liveness probe
//	GET    /ready                               readiness probe
//	GET    /api/key                             credential status
//	PUT    /api/key                             validate and save credential
//	POST   /api/sessions                        open a session
//	GET    /api/sessions                        list open sessions
//	GET    /api/sessions/{id}                   session state snapshot
//	DELETE /api/sessions/{id}                   close a session
//	GET    /api/sessions/{id}/document          document contents
//	POST   /api/sessions/{id}/view              pan / zoom / viewport
//	POST   /api/sessions/{id}/tool              tool switches and shortcuts
//	POST   /api/sessions/{id}/pointer           pointer down / move / up
//	POST   /api/sessions/{id}/images            import an image payload
//	POST   /api/sessions/{id}/drawings          place a drawing surface
//	PATCH  /api/sessions/{id}/objects/{obj}     partial object update
//	POST   /api/sessions/{id}/selection         select / deselect / delete
//	POST   /api/sessions/{id}/aspect            target aspect ratio
//	POST   /api/sessions/{id}/brush             brush slider position
//	POST   /api/sessions/{id}/generate          run a generation
//	POST   /api/sessions/{id}/video             animate an image
//	GET    /api/sessions/{id}/project           export project archive
//	PUT    /api/sessions/{id}/project           import project archive
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - session.go: session lifecycle and interaction endpoints
//   - generate.go: generation, video, and credential endpoints
//   - project.go: project archive endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/promptboard/promptboard/internal/log"
	"github.com/promptboard/promptboard/internal/session"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "localhost:8085"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	// Project archives and image payloads can be large, so it is generous.
	ReadTimeout = 120 * time.Second

	// WriteTimeout allows for generation requests that ride out retries.
	WriteTimeout = 10 * time.Minute

	// IdleTimeout is the keep-alive limit between requests.
	IdleTimeout = 120 * time.Second

	// MaxBodyBytes bounds request bodies: room for a project archive full
	// of image payloads, but not unbounded.
	MaxBodyBytes = 256 << 20
)

// Server is the HTTP server for the editor API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health   *HealthHandler
	sessions *SessionHandler
	generate *GenerateHandler
	project  *ProjectHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(manager *session.Manager, creds CredentialStore, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		health:   NewHealthHandler(creds, logger),
		sessions: NewSessionHandler(manager, logger),
		generate: NewGenerateHandler(manager, creds, logger),
		project:  NewProjectHandler(manager, logger),
	}

	s.health.RegisterRoutes(mux)
	s.sessions.RegisterRoutes(mux)
	s.generate.RegisterRoutes(mux)
	s.project.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → body limit → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		bodyLimitMiddleware(MaxBodyBytes),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
