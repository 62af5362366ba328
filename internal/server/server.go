package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/logger"
	"taskmanager/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Logger

	redis *redis.Client
}

func Init(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == config.DefaultSecretKey && !cfg.Debug {
		log.Warn("SECRET_KEY is the built-in default; set a unique secret in production")
	}

	db, dialect, err := database.Open(cfg.DatabaseURL, logger.Gorm(log, cfg.Debug))
	if err != nil {
		return nil, err
	}
	log.WithField("dialect", dialect).Info("Connected to database")

	if err := database.Migrate(db, dialect, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Server{DB: db, Config: cfg, Log: log}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled() && cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable; requests pass unthrottled until it recovers")
		}
		cancel()
		limiter = ratelimit.NewRedisLimiter(s.redis, cfg.RateLimit)
		log.WithField("rate", cfg.RateLimit.String()).Info("Rate limiting enabled")
	} else {
		log.Info("Rate limiting disabled")
	}

	s.Engine, err = NewRouter(Deps{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Limiter: limiter,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Infof("Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Fatalf("Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatalf("Server forced to shutdown: %s", err)
	}

	s.close()
	s.Log.Info("Server exited properly")
}

func (s *Server) close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Log.WithError(err).Warn("closing redis client")
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.Log.WithError(err).Warn("closing database")
		}
	}
}
