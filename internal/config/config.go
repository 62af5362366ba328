package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"taskmanager/internal/ratelimit"
)

const DefaultSecretKey = "your-secret-key-here"

// Config is built once at startup and shared read-only by every component.
type Config struct {
	AppName     string
	ServerPort  string
	DatabaseURL string

	JWTSecret      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration
	BcryptCost     int

	Debug    bool
	LogLevel string

	RateLimit     ratelimit.Rate
	RedisAddr     string
	RedisPassword string

	CORSAllowedOrigins []string
	TrustedProxies     []string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ttlMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	debug, err := strconv.ParseBool(getEnv("DEBUG", "true"))
	if err != nil {
		return nil, fmt.Errorf("DEBUG must be a boolean: %w", err)
	}

	rate, err := ratelimit.ParseRate(getEnv("RATE_LIMIT", "100/hour"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		AppName:            getEnv("APP_NAME", "Task Management API"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite:///./tasks.db"),
		JWTSecret:          getEnv("SECRET_KEY", DefaultSecretKey),
		JWTAlgorithm:       strings.ToUpper(getEnv("ALGORITHM", "HS256")),
		AccessTokenTTL:     time.Duration(ttlMinutes) * time.Minute,
		BcryptCost:         bcryptCost,
		Debug:              debug,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimit:          rate,
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, fmt.Errorf("ALGORITHM %q is not supported", cfg.JWTAlgorithm)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// AdminBootstrap reports whether an admin account should be ensured at startup.
func (c *Config) AdminBootstrap() bool {
	return c.AdminUsername != "" && c.AdminEmail != "" && c.AdminPassword != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
