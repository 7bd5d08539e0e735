package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/directory"
	"github.com/onbloom-hq/onbloom-engine/pkg/adapters/taste"
	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/config"
	"github.com/onbloom-hq/onbloom-engine/pkg/database"
	"github.com/onbloom-hq/onbloom-engine/pkg/email"
	"github.com/onbloom-hq/onbloom-engine/pkg/handlers"
	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/middleware"
	"github.com/onbloom-hq/onbloom-engine/pkg/repositories"
	"github.com/onbloom-hq/onbloom-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("redis", cfg.Redis.Host),
		zap.Int("gift_retention_days", cfg.Gifts.RetentionDays))

	ctx := context.Background()

	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	generator, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create generation client", zap.Error(err))
	}

	thinker, err := llm.NewAnthropicClient(cfg.LLM.AnthropicAPIKey, cfg.LLM.ThinkingModel, logger)
	if err != nil {
		logger.Fatal("Failed to create thinking client", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMW := auth.NewMiddleware(authService, logger)

	dir := directory.NewDirectory(cfg.Directory.APIKey, cfg.Directory.DatabaseID, logger)
	tasteClient := taste.NewClient(cfg.Taste.BaseURL, cfg.Taste.APIKey, logger)
	sender := email.NewSender(cfg.Email.APIKey, cfg.Email.From, logger)

	giftRepo := repositories.NewGiftRepository(redisClient, cfg.Gifts.RetentionDays, logger)
	giftService := services.NewGiftService(giftRepo, logger)
	recommendationService := services.NewRecommendationService(dir, tasteClient, logger)
	chatService := services.NewChatService(dir, tasteClient, generator, logger)
	relationshipService := services.NewRelationshipService(dir, generator, thinker, logger)
	onboardingService := services.NewOnboardingService(generator, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewGiftHandler(giftService, recommendationService, chatService, authMW, logger).RegisterRoutes(mux)
	handlers.NewRelationshipHandler(relationshipService, authMW, logger).RegisterRoutes(mux)
	handlers.NewOnboardingHandler(onboardingService, authMW, logger).RegisterRoutes(mux)
	handlers.NewEmployeeHandler(dir, authMW, logger).RegisterRoutes(mux)
	handlers.NewEmailHandler(sender, authMW, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting onbloom-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// buildLogger picks the zap preset for the environment.
func buildLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
