package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"daily-close/internal/service"
)

const (
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	mx            *chi.Mux
	taskService   service.TaskServiceI
	statsService  service.StatsServiceI
	authService   service.AuthServiceI
	sessions      *SessionManager
	views         *views
	manifestToken string
}

type ServicesList struct {
	TaskService  service.TaskServiceI
	StatsService service.StatsServiceI
	AuthService  service.AuthServiceI
	Sessions     *SessionManager
	// Optional bearer token accepted by POST /api/manifest.
	ManifestToken string
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:            chi.NewMux(),
		taskService:   servicesOptions.TaskService,
		statsService:  servicesOptions.StatsService,
		authService:   servicesOptions.AuthService,
		sessions:      servicesOptions.Sessions,
		views:         mustLoadViews(),
		manifestToken: servicesOptions.ManifestToken,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware, middleware.Recoverer)

	s.mx.Get("/healthz", s.Healthz)
	s.mx.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))
	s.mx.Get("/login", s.LoginPage)
	s.mx.Post("/login", s.Login)
	s.mx.With(s.ManifestAuthMiddleware).Post("/api/manifest", s.Manifest)

	s.mx.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Get("/logout", s.Logout)
		r.Get("/", s.Index)
		r.Get("/dashboard", s.Dashboard)
		r.Get("/api/stats", s.Stats)
		r.Post("/api/task/{id}/toggle", s.ToggleTask)
		r.Get("/export/weekly.csv", s.ExportWeeklyCSV)
		r.Get("/export/weekly.xlsx", s.ExportWeeklyXLSX)
	})
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}
