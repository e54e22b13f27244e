package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/imagevault/internal/config"
	"github.com/sundayezeilo/imagevault/internal/httpx"
	"github.com/sundayezeilo/imagevault/internal/images"
	"github.com/sundayezeilo/imagevault/internal/shortener"
)

// Server represents the HTTP server with all dependencies.
type Server struct {
	config       *config.Config
	logger       *slog.Logger
	linkHandler  *shortener.Handler
	imageHandler *images.Handler
	server       *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, linkHandler *shortener.Handler, imageHandler *images.Handler) *Server {
	return &Server{
		config:       cfg,
		logger:       logger,
		linkHandler:  linkHandler,
		imageHandler: imageHandler,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	mux := s.setupRoutes()
	handler := s.applyMiddleware(mux)
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	// Listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	// Listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		// Attempt graceful shutdown
		if err := s.server.Shutdown(ctx); err != nil {
			// Force close if graceful shutdown fails
			if closeErr := s.server.Close(); closeErr != nil {
				return fmt.Errorf("failed to close server: %w", closeErr)
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		s.logger.Info("server stopped gracefully")
		return nil
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /x/health", s.healthCheckHandler)

	// Image management
	transformLimiter := httpx.NewRateLimiter(
		s.config.RateLimit.TransformRequests,
		s.config.RateLimit.TransformWindow,
		httpx.CallerKey(images.OwnerIDHeader),
	)

	mux.HandleFunc("POST /api/images/upload", s.imageHandler.UploadImage)
	mux.HandleFunc("GET /api/images/upload-signature", s.imageHandler.UploadSignature)
	mux.HandleFunc("POST /api/images/save", s.imageHandler.SaveImage)
	mux.Handle("POST /api/images/{id}/transform",
		transformLimiter.Limit(http.HandlerFunc(s.imageHandler.TransformImage)))
	mux.HandleFunc("GET /api/images/{id}", s.imageHandler.GetImage)
	mux.HandleFunc("GET /api/images", s.imageHandler.ListImages)
	mux.HandleFunc("DELETE /api/images/{id}", s.imageHandler.DeleteImage)

	// URL shortener
	mux.HandleFunc("POST /api/shorten", s.linkHandler.CreateLink)
	mux.HandleFunc("GET /api/shorten/{slug}", s.linkHandler.GetLink)
	mux.HandleFunc("PUT /api/shorten/{slug}", s.linkHandler.UpdateLink)
	mux.HandleFunc("DELETE /api/shorten/{slug}", s.linkHandler.DeleteLink)
	mux.HandleFunc("GET /api/shorten/{slug}/stats", s.linkHandler.LinkStats)
	mux.HandleFunc("GET /{slug}", s.linkHandler.ResolveLink)

	return mux
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return httpx.Chain(
		httpx.Recovery(s.logger), // Outermost: catch panics
		httpx.RequestID,          // Add request ID
		httpx.Logger(s.logger),   // Log requests
		httpx.CORS(nil),          // CORS headers (allow all in dev)
	)(handler)
}

// healthCheckHandler handles health check requests.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.config.Observability.ServiceName,
		"version": s.config.Observability.ServiceVersion,
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
