// Package server wires the application together: it owns the router, the
// middleware stack, the route table, and the dependency graph.
//
// This is the composition root — the database, services, and handlers are
// all constructed here and passed down explicitly. Nothing in the core
// reaches for ambient global state, which is what lets the tests spin up
// fully isolated instances against in-memory databases.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → repositories → services → handlers → routes
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
	"github.com/go-chi/cors"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/handler"
	"github.com/sakif/second-brain/internal/middleware"
	sqliteRepo "github.com/sakif/second-brain/internal/repository/sqlite"
	"github.com/sakif/second-brain/internal/service"
	"github.com/sakif/second-brain/internal/validation"
)

// Config holds everything the server needs; main.go assembles it from the
// environment. JWTSecret is the only hard requirement — NewTokenService
// rejects short secrets and New propagates that as a startup failure.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration // bearer token lifetime; 0 = auth.DefaultTokenTTL
	BcryptCost int           // password hash cost factor; 0 = auth.DefaultCost

	// AllowedOrigins is the CORS allow-list for the frontend(s).
	AllowedOrigins []string

	// GitHub OAuth credentials. When empty, the /auth/github routes are
	// not registered and password auth is the only way in.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The DB handle is
// closed during Start's graceful shutdown path.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph. Each layer receives interfaces or
// services, never the layers below them: handlers don't see the
// repositories, services don't see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
//	POST   /api/v1/signup             → register (public)
//	POST   /api/v1/signin             → password signin (public)
//	GET    /api/v1/me                 → current user (bearer)
//	POST   /api/v1/content            → save a reference (bearer)
//	GET    /api/v1/content            → list own references (bearer)
//	DELETE /api/v1/content            → delete own reference (bearer)
//	POST   /api/v1/brain/share        → enable/disable sharing (bearer)
//	GET    /api/v1/brain/{shareLink}  → public shared brain (no auth)
//	GET    /auth/github/login         → OAuth redirect (optional)
//	GET    /auth/github/callback      → OAuth completion (optional)
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)
	validate := validation.New()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	contentService := service.NewContentService(s.db.Contents(), s.logger)
	shareService := service.NewShareService(s.db.ShareLinks(), s.db.Contents(), s.db.Users(), s.logger)

	authHandler := handler.NewAuthHandler(authService, github, validate, s.logger)
	contentHandler := handler.NewContentHandler(contentService, validate, s.logger)
	shareHandler := handler.NewShareHandler(shareService, validate, s.logger)

	// Global middleware, in order: request ID, real client IP, panic
	// recovery, CORS for the frontend origins, request logging.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	s.router.Use(middleware.Logger(s.logger))

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)

		// Public share resolution — hash possession is the access control.
		r.Get("/brain/{shareLink}", shareHandler.HandleResolve)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/content", contentHandler.HandleCreate)
			r.Get("/content", contentHandler.HandleList)
			r.Delete("/content", contentHandler.HandleDelete)
			r.Post("/brain/share", shareHandler.HandleShare)
		})
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Info("GitHub OAuth not configured — /auth/github routes disabled")
	}

	return nil
}

// Router exposes the configured router for handler-level tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's database handle. Start does this itself;
// Close exists for callers that never reach Start (tests, setup failures).
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database (flushing the WAL
// and releasing the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
