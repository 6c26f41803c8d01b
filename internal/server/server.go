package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	secomposer "github.com/sameashark/se-composer"
)

// Config holds server configuration
type Config struct {
	Addr   string
	Logger *slog.Logger
}

// Server exposes a Composer over HTTP. Commands are serialized behind one
// mutex.
type Server struct {
	config   Config
	router   *chi.Mux
	logger   *slog.Logger
	mu       sync.Mutex
	composer *secomposer.Composer
}

func New(c *secomposer.Composer, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger.With("component", "server"),
		composer: c,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)

	r.Route("/params", func(r chi.Router) {
		r.Patch("/", s.handleSetParams)
		r.Put("/{key}", s.handleSetParam)
	})
	r.Route("/notes", func(r chi.Router) {
		r.Post("/", s.handleAddNote)
		r.Delete("/", s.handleClearNotes)
		r.Patch("/{id}", s.handleUpdateNote)
		r.Delete("/{id}", s.handleRemoveNote)
	})
	r.Route("/history", func(r chi.Router) {
		r.Post("/push", s.handlePushHistory)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
	})

	r.Post("/play", s.handlePlay)
	r.Post("/stop", s.handleStop)
	r.Get("/export.wav", s.handleExportWAV)
	r.Get("/export.json", s.handleExportJSON)

	r.Route("/presets", func(r chi.Router) {
		r.Get("/", s.handleListPresets)
		r.Post("/import", s.handleImport)
		r.Post("/{name}", s.handleSavePreset)
		r.Post("/{name}/load", s.handleLoadPreset)
		r.Delete("/{name}", s.handleDeletePreset)
	})
	r.Post("/samples/{kind}", s.handleApplySample)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
