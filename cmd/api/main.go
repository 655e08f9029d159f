package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/canvas-helper-api/internal/config"
	"github.com/noah-isme/canvas-helper-api/internal/database"
	"github.com/noah-isme/canvas-helper-api/internal/handler"
	"github.com/noah-isme/canvas-helper-api/internal/middleware"
	"github.com/noah-isme/canvas-helper-api/internal/models"
	"github.com/noah-isme/canvas-helper-api/internal/repository"
	"github.com/noah-isme/canvas-helper-api/internal/router"
	"github.com/noah-isme/canvas-helper-api/internal/service"
	"github.com/noah-isme/canvas-helper-api/internal/utils"
	"github.com/noah-isme/canvas-helper-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Preferences{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectOptionalRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Info().Msg("redis not configured, preferences are read straight from the database")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	preferenceRepo := repository.NewPreferenceRepository(db)
	preferenceService := service.NewPreferenceService(preferenceRepo, redisClient, cfg.PreferenceCacheTTL, validate, logger)

	newAdvisor := func(apiKey string) (ai.LeadTimeAdvisor, error) {
		advisor, err := ai.NewOpenAIAdvisor(ai.OpenAIConfig{
			Provider: cfg.AIProvider,
			APIKey:   apiKey,
			Model:    cfg.AIModel,
			BaseURL:  cfg.AIBaseURL,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return advisor, nil
	}
	recommender := service.NewStartDateRecommender(newAdvisor, cfg.AIAPIKey, cfg.AIRequestInterval, logger)
	planner := service.NewPlanner(service.NewAssignmentFilter(cfg.WindowDays), recommender, cfg.CanvasConcurrency, logger)

	assignmentService := service.NewAssignmentService(
		preferenceService,
		planner,
		service.NewCanvasFetcherFactory(cfg.CanvasTimeout, logger),
		service.AssignmentServiceConfig{
			DomainSuffix: cfg.CanvasDomainSuffix,
			CycleTimeout: cfg.CycleTimeout,
		},
		logger,
	)

	messageHandler := handler.NewMessageHandler(assignmentService, validate, logger)
	preferencesHandler := handler.NewPreferencesHandler(preferenceService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
				return utils.SendError(c, status, "internal server error")
			}
			return utils.SendError(c, status, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowedOrigins: cfg.AllowedOrigins})
	router.Register(app, cfg, router.Dependencies{
		MessageHandler:     messageHandler,
		PreferencesHandler: preferencesHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.AuthJWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("canvas_domain", cfg.CanvasDomainSuffix).
		Str("ai_provider", cfg.AIProvider).
		Msg("server started")

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
