// Package server is the composition root: it opens the store, builds the
// verifier, notifier, services and handlers, and mounts them on one chi
// router.
//
// ROUTES:
//
//	GET  /health
//	POST /register
//	POST /login
//	POST /logout
//	GET  /api/athletes
//	GET  /api/athletes/{id}
//	GET  /api/settings/{userId}   bearer token, subject must be {userId}
//	PUT  /api/settings/{userId}   bearer token, subject must be {userId}
//	POST /api/update-password
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/athletix/internal/auth"
	"github.com/sakif/athletix/internal/config"
	"github.com/sakif/athletix/internal/handler"
	"github.com/sakif/athletix/internal/middleware"
	"github.com/sakif/athletix/internal/notify"
	"github.com/sakif/athletix/internal/repository/sqldb"
	"github.com/sakif/athletix/internal/service"
)

// Server owns the router and the store connection. The store is closed
// when Start returns.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqldb.DB
}

// New wires every dependency. Nothing is listening until Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqldb.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	tokens, verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up auth: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, verifier, newNotifier(cfg.Mail, logger))

	logger.Info("server configured",
		slog.String("driver", db.Dialect().String()),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("smtp", cfg.Mail.Enabled()),
		slog.Bool("atomic_settings", cfg.Settings.AtomicWrites),
	)
	return s, nil
}

// newVerifier returns the token issuer used by /login (nil without a JWT
// secret) and the verifier guarding /api/settings.
func newVerifier(ctx context.Context, cfg config.AuthConfig) (*auth.TokenService, auth.Verifier, error) {
	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(auth.TokenConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      cfg.TokenTTL,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	switch cfg.Mode {
	case config.AuthModeJWT:
		if tokens == nil {
			return nil, nil, errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		return tokens, tokens, nil
	case config.AuthModeRemote:
		client := &http.Client{Timeout: 10 * time.Second}
		return tokens, auth.NewRemoteVerifier(cfg.RemoteUserURL, cfg.RemoteAPIKey, client), nil
	case config.AuthModeOIDC:
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, nil, err
		}
		return tokens, v, nil
	default:
		return nil, nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

func newNotifier(cfg config.MailConfig, logger *slog.Logger) notify.Notifier {
	if !cfg.Enabled() {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		FromName: cfg.FromName,
	}, logger)
}

// setupRoutes builds the service layer on the store and mounts handlers.
//
// MIDDLEWARE ORDER:
// RequestID → RealIP → Logger → Recoverer → CORS. The settings routes add
// auth.RequireSubject in their own group so the token is checked after
// chi has resolved {userId} and before the handler touches the store.
func (s *Server) setupRoutes(tokens *auth.TokenService, verifier auth.Verifier, notifier notify.Notifier) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	settingsService := service.NewSettingsService(s.db, s.cfg.Settings.AtomicWrites, s.logger)
	athleteService := service.NewAthleteService(s.db, s.logger)
	accountService := service.NewAccountService(
		s.db, s.db, s.db,
		auth.NewPasswordService(),
		tokens,
		notifier,
		s.logger,
	)

	settingsHandler := handler.NewSettingsHandler(settingsService, s.logger)
	athleteHandler := handler.NewAthleteHandler(athleteService, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, s.logger)

	s.router.Get("/health", handler.HandleHealth(s.db, s.logger))

	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.Post("/logout", accountHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/athletes", athleteHandler.HandleList)
		r.Get("/athletes/{id}", athleteHandler.HandleGet)
		r.Post("/update-password", accountHandler.HandleUpdatePassword)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSubject(verifier, "userId", s.logger))
			r.Get("/settings/{userId}", settingsHandler.HandleGet)
			r.Put("/settings/{userId}", settingsHandler.HandlePut)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
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
			slog.Int("port", s.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
