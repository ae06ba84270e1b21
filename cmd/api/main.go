package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"taskdesk/configs"
	v1 "taskdesk/internal/api/v1"
	"taskdesk/internal/api/v1/handlers"
	"taskdesk/internal/auth"
	"taskdesk/internal/middleware"
	"taskdesk/internal/repository"
	"taskdesk/internal/token"
	"taskdesk/internal/ws"
	"taskdesk/pkg/database"
	"taskdesk/pkg/logger"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(db)

	redisClient := database.ConnectRedis(cfg)
	defer redisClient.Close()

	// The signing secret lives in the issuer, nowhere else.
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	verifier := auth.NewVerifier(db, cfg.QueryTimeout)
	taskRepo := repository.NewTaskRepository(db, cfg.QueryTimeout)

	hub := ws.NewHub()
	go hub.Run()

	h := handlers.New(taskRepo, verifier, issuer, redisClient, hub)

	app := fiber.New()

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app, h)

	logger.SystemLogger.Info("Application ready", zap.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
