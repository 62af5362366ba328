package server

import (
	"context"
	"fmt"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handler"
	"taskmanager/internal/middleware"
	"taskmanager/internal/ratelimit"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const Version = "1.0.0"

// Deps are the process-wide resources the router is built from. A nil
// Limiter disables rate limiting.
type Deps struct {
	Config  *config.Config
	Log     *logrus.Logger
	DB      *gorm.DB
	Limiter ratelimit.Limiter
}

// NewRouter wires repositories, services and handlers onto a gin engine and
// ensures the configured admin account exists.
func NewRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	if err := handler.RegisterValidations(); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// Initialize repositories
	userRepo := repository.NewUserRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	// Initialize services
	resolver := service.NewIdentityResolver(tokens, userRepo)
	userService := service.NewUserService(userRepo, hasher, tokens, deps.Log)
	taskService := service.NewTaskService(taskRepo, deps.Log)

	if cfg.AdminBootstrap() {
		if _, err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)
	healthHandler := handler.NewHealthHandler(cfg.AppName, Version, sqlDB)

	r := gin.New()
	// With no trusted proxies ClientIP is the direct peer address.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter, deps.Log))
	}

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Protected routes - require an active user
	authorized := api.Group("")
	authorized.Use(middleware.Authenticate(resolver))
	{
		authorized.POST("/tasks/", taskHandler.Create)
		authorized.GET("/tasks/", taskHandler.List)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		authorized.GET("/users/me", userHandler.Me)
		authorized.PUT("/users/me", userHandler.UpdateMe)
	}

	// Admin routes
	admin := authorized.Group("/users")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/", userHandler.List)
		admin.PUT("/:id/activate", userHandler.Activate)
		admin.PUT("/:id/deactivate", userHandler.Deactivate)
		admin.DELETE("/:id", userHandler.Delete)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	cfg.AddAllowHeaders("Authorization")
	cfg.AddExposeHeaders("X-Total-Count", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining")
	return cfg
}
