package main

import (
	"log"

	_ "taskmanager/docs"
	"taskmanager/internal/config"
	"taskmanager/internal/logger"
	"taskmanager/internal/server"
)

// @title           Task Management API
// @version         1.0.0
// @description     Task tracking with per-user ownership, JWT authentication and admin account management.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg := logger.New(cfg.LogLevel, cfg.Debug)

	s, err := server.Init(cfg, logg)
	if err != nil {
		logg.Fatalf("Server initialization failed: %v", err)
	}

	s.Run()
}
