// Package server exposes the meshing engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/config"
	"github.com/stepmesh/stepmesh/internal/exporter"
	"github.com/stepmesh/stepmesh/internal/reader"
	"github.com/stepmesh/stepmesh/internal/storage"
	"github.com/stepmesh/stepmesh/internal/store"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Server wires the meshing engine, solid registry, artifact storage
// and export queue behind an HTTP API.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	kernel   kernel.Kernel
	readers  *reader.Registry
	solids   *store.Store
	storage  *storage.Store
	exporter *exporter.Exporter
}

// New assembles a server from its dependencies.
func New(cfg *config.Config, k kernel.Kernel, readers *reader.Registry, solids *store.Store, artifacts *storage.Store, exp *exporter.Exporter, log *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		kernel:   k,
		readers:  readers,
		solids:   solids,
		storage:  artifacts,
		exporter: exp,
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/process-step", s.handleProcess)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/export/{solidID}", s.handleExport)
		r.Post("/save-stl", s.handleSaveSTL)
		r.Post("/store-stl", s.handleStoreSTL)
		r.Get("/list-projects", s.handleListProjects)
		r.Get("/project/{projectID}", s.handleProject)
		r.Get("/download-stl/{projectID}/{filename}", s.handleDownload)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
