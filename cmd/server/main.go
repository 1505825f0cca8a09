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

	"job_marketplace/internal/config"
	"job_marketplace/internal/handler"
	"job_marketplace/internal/middleware"
	"job_marketplace/internal/migrate"
	"job_marketplace/internal/repository"
	"job_marketplace/internal/service"
	"job_marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Миграции схемы
	if err := migrate.Up(context.Background(), cfg.Database.DSN); err != nil {
		appLogger.Fatal("Failed to apply migrations", "error", err)
	}
	appLogger.Info("Migrations applied")

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	// Проверка подключения к БД
	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Проверка подключения к Redis
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	// Инициализация сервисов
	services, err := service.NewServices(repos, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to init services", "error", err)
	}

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, cfg, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// Server info - для клиентов
	router.GET("/server-info", handlers.Health.ServerInfo)

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Диалоги
			conversations := protected.Group("/conversations")
			{
				conversations.POST("/start", rateLimitMiddleware.Limit(), handlers.Conversation.Start)
				conversations.GET("", handlers.Conversation.List)
				conversations.POST("/:id/respond", handlers.Conversation.Respond)
				conversations.GET("/:id/messages", handlers.Conversation.GetMessages)
				conversations.POST("/:id/messages", handlers.Conversation.SendMessage)
				conversations.DELETE("/:id", handlers.Conversation.Delete)
			}

			// Запросы на контакт через рекрутера
			chatRequests := protected.Group("/chat-requests")
			{
				chatRequests.GET("", handlers.ChatRequest.ListPending)
				chatRequests.POST("/:id/accept", handlers.ChatRequest.Accept)
				chatRequests.POST("/:id/reject", handlers.ChatRequest.Reject)
			}

			// Блокировки
			blocks := protected.Group("/blocks")
			{
				blocks.POST("", handlers.Block.Block)
				blocks.DELETE("/:counterpartId", handlers.Block.Unblock)
			}

			// Счетчики непрочитанного
			protected.GET("/unread", handlers.Unread.GetCounts)

			// WebSocket канал диалога
			protected.GET("/ws/conversations/:id", handlers.WebSocket.HandleConversation)
		}
	}

	return router
}
