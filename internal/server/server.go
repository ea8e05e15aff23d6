// Package server wires the router and owns the HTTP server lifecycle.
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
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/oracle-enclave/internal/auth"
	"github.com/sakif/oracle-enclave/internal/handler"
	"github.com/sakif/oracle-enclave/internal/middleware"
)

// Config holds what the server needs beyond its handlers.
type Config struct {
	Port string
	// Tokens guards the feed admin endpoints when set. A nil value leaves
	// them open, which is the right default inside an enclave where the
	// host cannot reach the admin surface anyway.
	Tokens *auth.TokenService
}

// Server is the HTTP front of the oracle.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the router and returns a ready-to-start Server.
func New(cfg Config, oracle *handler.OracleHandler, feeds *handler.FeedHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Pong!"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/process_feed", oracle.ProcessFeed)
		r.Post("/execute", oracle.Execute)
		r.Get("/attestation", oracle.Attestation)

		r.Get("/feeds/{id}", feeds.Get)
		r.Group(func(r chi.Router) {
			if cfg.Tokens != nil {
				r.Use(auth.RequireAuth(cfg.Tokens))
			}
			r.Post("/feeds", feeds.Create)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case sig := <-stop:
		s.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
