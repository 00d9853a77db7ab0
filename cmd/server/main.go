package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/config"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/database"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/handler"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/handoff"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/jobs"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/redis"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	userRepo := repository.NewUserRepository(db.DB)
	connRepo := repository.NewConnectionRepository(db.DB)
	contactRepo := repository.NewContactRepository(db.DB)
	apptRepo := repository.NewAppointmentRepository(db.DB)

	googleClient := google.NewClient(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.OAuthRedirectBase+"/oauth/google/callback",
	)
	handoffStore := handoff.NewRedisStore(redisClient.Client, cfg.HandoffTTL())

	oauthService := service.NewOAuthService(googleClient, connRepo, handoffStore, cfg.OAuthRedirectBase)
	tokenService := service.NewTokenService(googleClient, connRepo)
	syncService := service.NewCalendarSyncService(googleClient, tokenService, connRepo, contactRepo, apptRepo)
	businessService := service.NewBusinessProfileService(googleClient, tokenService, connRepo)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.ServiceKeyHash)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client)

	oauthHandler := handler.NewOAuthHandler(oauthService, cfg.OAuthRedirectBase, cfg.PostAuthRedirect)
	connectionHandler := handler.NewConnectionHandler(oauthService)
	contactHandler := handler.NewContactHandler(contactRepo)
	appointmentHandler := handler.NewAppointmentHandler(apptRepo)
	syncHandler := handler.NewSyncHandler(syncService)
	businessHandler := handler.NewBusinessHandler(businessService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/oauth/google", func(r chi.Router) {
		r.With(authMiddleware.RequireUser).Get("/connect", oauthHandler.Connect)
		r.Mount("/", oauthHandler.PublicRoutes())
	})

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireUser)
			r.Use(rateLimitMiddleware.Handler)
			r.Mount("/connections", connectionHandler.Routes())
			r.Mount("/contacts", contactHandler.Routes())
			r.Mount("/appointments", appointmentHandler.Routes())
			r.Get("/business-profile/locations", businessHandler.ListLocations)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireUserOrServiceKey)
			r.Use(rateLimitMiddleware.Handler)
			r.Post("/sync/calendar", syncHandler.TriggerCalendarSync)
		})
	})

	syncJob := jobs.NewSyncJob(connRepo, syncService, cfg.SyncInterval())
	syncJob.Start()
	defer syncJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
