package main

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
	_ "github.com/lib/pq"

	"github.com/morhendos/tenis-del-parque/config"
	"github.com/morhendos/tenis-del-parque/db"
	"github.com/morhendos/tenis-del-parque/handlers"
	"github.com/morhendos/tenis-del-parque/live"
	"github.com/morhendos/tenis-del-parque/repositories"
	api "github.com/morhendos/tenis-del-parque/routes"
	"github.com/morhendos/tenis-del-parque/services"
	"github.com/morhendos/tenis-del-parque/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.StorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized", slog.String("bucket", cfg.R2Bucket))
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	regRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	playoffRepo := repositories.NewPostgresPlayoffRepository(dbConn)

	authService := services.NewAuthService(playerRepo)
	playerService := services.NewPlayerService(playerRepo, uploader)
	leagueService := services.NewLeagueService(dbConn, leagueRepo, uploader)
	regService := services.NewRegistrationService(dbConn, regRepo, leagueRepo, playerRepo, matchRepo, uploader)
	standingsService := services.NewStandingsService(leagueRepo, regRepo, matchRepo, playerRepo, uploader)
	roundService := services.NewRoundService(dbConn, leagueRepo, regRepo, playerRepo, matchRepo, logger)
	matchService := services.NewMatchService(matchRepo, leagueRepo)
	resultService := services.NewResultService(dbConn, matchRepo, playerRepo, regRepo, leagueRepo, wsHub, logger)
	playoffService := services.NewPlayoffService(dbConn, leagueRepo, playoffRepo, matchRepo, standingsService, wsHub, logger)
	resultService.SetPlayoffProgressor(playoffService)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService)
	leagueHandler := handlers.NewLeagueHandler(leagueService, regService, roundService)
	matchHandler := handlers.NewMatchHandler(matchService, resultService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	playoffHandler := handlers.NewPlayoffHandler(playoffService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		playerHandler,
		leagueHandler,
		matchHandler,
		standingsHandler,
		playoffHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
