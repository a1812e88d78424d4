package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/handler"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Printf("✅ Connected to %s database", cfg.DBDriver)

	if err := database.Migrate(db, cfg); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}

	engine, err := NewRouter(db, cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: engine,
		DB:     db,
		Config: cfg,
	}, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	handler.RegisterValidators()
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	authService := service.NewAuthService(userRepo, auth.NewPasswordHasher(bcrypt.DefaultCost), tokens)
	taskService := service.NewTaskService(taskRepo, userRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	healthHandler := handler.NewHealthHandler(sqlDB)

	r.GET("/health", healthHandler.Check)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/register", userHandler.Register)
	api.POST("/auth/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := api.Group("/tasks")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		authorized.POST("", taskHandler.Create)
		authorized.GET("", taskHandler.List)
		authorized.GET("/statistics", taskHandler.Statistics)
		authorized.GET("/:id", taskHandler.GetByID)
		authorized.PUT("/:id", taskHandler.Update)
		authorized.DELETE("/:id", taskHandler.Delete)
	}

	return r, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️  Failed to close database: %s", err)
		}
	}

	log.Println("✅ Server exited properly")
}
