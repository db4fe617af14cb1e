package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosound/app/echo-server/router"
	"cosound/business/presence"
	"cosound/business/recommend"
	"cosound/business/taste"
	userService "cosound/business/user"
	"cosound/internal/middleware"
	psqlRepo "cosound/internal/repository/postgres"
	redisRepo "cosound/internal/repository/redis"
	"cosound/internal/rest"
	"cosound/pkg/config"
	"cosound/pkg/database"
	redisdb "cosound/pkg/database/redis"
	"cosound/pkg/logger"
	"cosound/pkg/metrics"
	"cosound/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Cosound", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.InitRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	prefRepo := psqlRepo.NewPreferenceRepository(db)
	voteRepo := psqlRepo.NewVoteRepository(db)
	trackRepo := psqlRepo.NewTrackRepository(db)
	presenceRepo := psqlRepo.NewPresenceRepository(db)
	historyRepo := psqlRepo.NewPlayHistoryRepository(db)
	playerRepo := psqlRepo.NewPlayerRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient)

	// Init service
	tasteCfg := taste.DefaultConfig()
	tasteCfg.VoteCooldown = time.Duration(cfg.Engine.VoteCooldownSeconds) * time.Second
	tasteCfg.TagTokenKey = cfg.App.AppTapTokenKey

	tasteService := taste.NewTasteService(prefRepo, voteRepo, trackRepo, tasteCfg)
	presenceService := presence.NewPresenceService(
		presenceRepo,
		userRepo,
		time.Duration(cfg.Engine.PresenceWindowSeconds)*time.Second,
	)
	recommendService := recommend.NewRecommendService(
		prefRepo,
		presenceService,
		trackRepo,
		historyRepo,
		recommend.DefaultConfig(),
	)
	usrService := userService.NewUserService(userRepo, tokenRepo, validate)

	// Init handler
	userHandler := rest.NewUserHandler(usrService)
	voteHandler := rest.NewVoteHandler(tasteService)
	preferenceHandler := rest.NewPreferenceHandler(tasteService)
	presenceHandler := rest.NewPresenceHandler(presenceService)
	playbackHandler := rest.NewPlaybackHandler(recommendService)
	trackHandler := rest.NewTrackHandler(trackRepo)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(usrService)
	adminOnly := middleware.AdminOnly()
	playerToken := middleware.PlayerTokenMiddleware(playerRepo)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupVoteRoutes(api, voteHandler, authRequired, adminOnly)
	router.SetupPreferenceRoutes(api, preferenceHandler, authRequired)
	router.SetupPresenceRoutes(api, presenceHandler, authRequired)
	router.SetupPlaybackRoutes(api, playbackHandler, playerToken, authRequired, adminOnly)
	router.SetupTrackRoutes(api, trackHandler, authRequired, adminOnly)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
