package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prophecy-badge-system/handlers"
	"prophecy-badge-system/middleware"
	"prophecy-badge-system/models"
	"prophecy-badge-system/services"
	"prophecy-badge-system/utils"
	"prophecy-badge-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.BadgeDefinition{},
		&models.UserBadge{},
		&models.User{},
		&models.Prophecy{},
		&models.Rating{},
		&models.Round{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := services.SeedBadgeCatalog(db, logger); err != nil {
		logger.Fatal("failed to seed badge catalog", zap.Error(err))
	}

	if err := utils.InitR2(); err != nil {
		logger.Fatal("failed to initialize R2 client", zap.Error(err))
	}

	catalog := services.NewCatalogIndex(models.BadgeCatalog)
	badgeService := services.NewBadgeService(db, catalog, logger)
	statsService := services.NewStatsService(db, logger)
	classifier := services.NewClassifierClient(os.Getenv("CLASSIFIER_URL"), logger)

	engine := services.NewRuleEngine(db, badgeService, statsService, catalog, classifier, services.EngineConfig{
		SkilledBotUsername:  envOr("SKILLED_BOT_USERNAME", "prophet-bot"),
		BaselineBotUsername: envOr("BASELINE_BOT_USERNAME", "random-bot"),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awardWorker := workers.NewAwardWorker(engine, 256, logger)
	go awardWorker.Run(ctx)

	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	if syncServiceURL == "" {
		logger.Fatal("SYNC_SERVICE_URL environment variable not set")
	}
	syncWorker := workers.NewUserSyncWorker(db, syncServiceURL, "/api/v1/public/users",
		os.Getenv("BADGE_SERVICE_TOKEN"), logger)
	syncWorker.Start(ctx)

	sched, err := engine.StartRecomputeScheduler(10 * time.Minute)
	if err != nil {
		logger.Fatal("failed to start recompute scheduler", zap.Error(err))
	}
	defer func() { _ = sched.Shutdown() }()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	// Only gateway requests allowed; no exceptions.
	app.Use(middleware.GatewayAuthMiddleware(logger))

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		logger.Warn("ALLOWED_ORIGINS not set, using default", zap.String("default", "http://localhost:3000"))
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupBadgeRoutes(app, badgeService, statsService, logger)
	handlers.SetupEventRoutes(app, awardWorker, logger)
	handlers.SetupAdminRoutes(app, db, catalog, logger)

	port := envOr("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	logger.Info("badge service running",
		zap.String("port", port),
		zap.Strings("allowed_origins", origins),
	)

	<-ctx.Done()
	logger.Info("shutting down")
	_ = app.Shutdown()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
