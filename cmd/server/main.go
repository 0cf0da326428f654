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

	"social_chat/internal/config"
	"social_chat/internal/handler"
	"social_chat/internal/middleware"
	"social_chat/internal/relay"
	"social_chat/internal/repository"
	"social_chat/internal/service"
	"social_chat/pkg/logger"

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

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

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

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев и сервисов
	repos := repository.NewRepositories(dbPool, rdb, appLogger)

	services, err := service.NewServices(repos, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to init services", "error", err)
	}

	// Первая загрузка списка запрещенных слов
	if err := services.Moderation.Reload(context.Background()); err != nil {
		appLogger.Warn("Failed to load moderation word list", "error", err)
	}

	// Хаб реального времени: группы доставки живут внутри процесса,
	// после рестарта восстанавливаются повторными join_room клиентов
	hub := relay.NewHub(appLogger)

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go hub.Run(runCtx)

	// Фоновые задачи: чистка истекших историй и перечитывание фильтра
	go runStorySweeper(runCtx, services.Story, cfg.Moderation.StorySweepInterval, appLogger)
	go runModerationReloader(runCtx, services.Moderation, cfg.Moderation.ReloadInterval, appLogger)

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, hub, cfg, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancelRun()

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
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// Статика для загруженных медиа
	router.Static("/uploads", cfg.Media.UploadDir)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
			public.POST("/refresh", handlers.Auth.RefreshToken)
			public.POST("/logout", handlers.Auth.Logout)
		}

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Пользователи
			users := protected.Group("/users")
			{
				users.GET("", handlers.User.List)
				users.GET("/me", handlers.User.GetMe)
				users.PUT("/me", handlers.User.UpdateMe)
				users.POST("/me/avatar", handlers.User.UploadAvatar)
				users.DELETE("/me", handlers.User.DeleteMe)
			}

			// Чат
			chat := protected.Group("/chat")
			{
				chat.GET("/rooms/:roomId/messages", handlers.Chat.GetMessages)
				chat.GET("/with/:userId/messages", handlers.Chat.GetConversation)
				chat.POST("/messages", rateLimitMiddleware.Limit(), handlers.Chat.SendMessage)
				chat.DELETE("/messages/:messageId", handlers.Chat.DeleteMessage)
			}

			// Истории
			stories := protected.Group("/stories")
			{
				stories.POST("", handlers.Story.Create)
				stories.GET("/my", handlers.Story.GetMine)
				stories.GET("/all", handlers.Story.GetAll)
				stories.DELETE("/:id", handlers.Story.Delete)
			}
		}
	}

	// WebSocket endpoint для чата
	router.GET("/ws/chat", handlers.WebSocket.HandleChat)

	return router
}

func runStorySweeper(ctx context.Context, stories service.StoryService, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := stories.SweepExpired(ctx); err != nil {
				log.Warn("Story sweep failed", "error", err)
			}
		}
	}
}

func runModerationReloader(ctx context.Context, moderation service.ModerationService, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := moderation.Reload(ctx); err != nil {
				log.Warn("Moderation reload failed", "error", err)
			}
		}
	}
}
