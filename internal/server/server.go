// Package server wires the HTTP router and owns process lifecycle.
//
// This is the composition root: the database, blob store, token and
// password services, repositories, services, and handlers are all
// constructed here and nowhere else. main.go only loads config, builds a
// logger, and calls New + Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/internmatch/internal/auth"
	"github.com/sakif/internmatch/internal/blob"
	"github.com/sakif/internmatch/internal/config"
	"github.com/sakif/internmatch/internal/handler"
	"github.com/sakif/internmatch/internal/middleware"
	sqliteRepo "github.com/sakif/internmatch/internal/repository/sqlite"
	"github.com/sakif/internmatch/internal/service"
	"github.com/sakif/internmatch/internal/watch"
)

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	blobs, err := blob.NewDiskStore(s.cfg.Blob.Root, s.cfg.Blob.BaseURL)
	if err != nil {
		return fmt.Errorf("creating blob store: %w", err)
	}

	students := sqliteRepo.NewStudentRepo(s.db)
	companies := sqliteRepo.NewCompanyRepo(s.db)
	internships := sqliteRepo.NewInternshipRepo(s.db)
	applications := sqliteRepo.NewApplicationRepo(s.db)

	hub := watch.NewHub()

	authService := service.NewAuthService(students, companies, tokens, passwords, blobs, s.logger)
	internshipService := service.NewInternshipService(internships, companies, hub, s.logger)
	applicationService := service.NewApplicationService(applications, internships, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	profileHandler := handler.NewProfileHandler(authService, s.logger)
	internshipHandler := handler.NewInternshipHandler(internshipService, s.logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, s.logger)

	// Stored resumes and logos are served straight off the blob root.
	fileServer := http.FileServer(http.Dir(blobs.Root()))
	s.router.Handle(s.cfg.Blob.BaseURL+"/*", http.StripPrefix(s.cfg.Blob.BaseURL+"/", fileServer))

	s.router.Route("/api", func(r chi.Router) {
		// Public: account creation, login, and posting discovery.
		r.Post("/auth/register/student", authHandler.HandleRegisterStudent)
		r.Post("/auth/register/company", authHandler.HandleRegisterCompany)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Get("/internships", internshipHandler.HandleList)
		r.Get("/internships/watch", internshipHandler.HandleWatchActive)
		r.Get("/internships/{id}", internshipHandler.HandleGet)

		// Any authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", profileHandler.HandleMe)
		})

		// Student-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, auth.RoleStudent))

			r.Patch("/students/me", profileHandler.HandleUpdateStudent)
			r.Post("/students/me/resume", profileHandler.HandleUploadResume)

			r.Post("/internships/{id}/applications", applicationHandler.HandleSubmit)
			r.Get("/internships/{id}/applied", applicationHandler.HandleHasApplied)
			r.Get("/applications", applicationHandler.HandleStudentList)
			r.Get("/applications/stats", applicationHandler.HandleStudentStats)
		})

		// Company-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, auth.RoleCompany))

			r.Patch("/companies/me", profileHandler.HandleUpdateCompany)
			r.Post("/companies/me/logo", profileHandler.HandleUploadLogo)
			r.Get("/companies/me/internships", internshipHandler.HandleCompanyList)
			r.Get("/companies/me/internships/watch", internshipHandler.HandleWatchCompany)
			r.Get("/companies/me/applications", applicationHandler.HandleCompanyList)

			r.Get("/students/{email}", profileHandler.HandleGetStudent)

			r.Post("/internships", internshipHandler.HandleCreate)
			r.Put("/internships/{id}", internshipHandler.HandleUpdate)
			r.Patch("/internships/{id}", internshipHandler.HandlePatch)
			r.Delete("/internships/{id}", internshipHandler.HandleDelete)
			r.Get("/internships/{id}/applications", applicationHandler.HandleInternshipList)
			r.Get("/internships/{id}/applications/stats", applicationHandler.HandleInternshipStats)

			r.Patch("/applications/{id}/status", applicationHandler.HandleUpdateStatus)
		})
	})

	return nil
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:        s.cfg.HTTPServer.Addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: the watch endpoints hold their response open
		// for the life of the subscription.
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.cfg.HTTPServer.Addr),
			slog.String("env", s.cfg.Env),
			slog.String("database", s.cfg.Storage.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
