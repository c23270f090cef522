package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	JWTSecret          string
	RedisURL           string
	CORSAllowedOrigins []string
	SweepInterval      time.Duration

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	sweepMinutes, err := strconv.Atoi(getEnv("SWEEP_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_MINUTES: %w", err)
	}
	if sweepMinutes < 1 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be at least 1")
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    getEnv("REDIS_URL", ""),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		SweepInterval: time.Duration(sweepMinutes) * time.Minute,
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        dbPort,
		DBUser:        getEnv("DB_USER", "rentease"),
		DBPassword:    getEnv("DB_PASSWORD", "dev"),
		DBName:        getEnv("DB_NAME", "rentease"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
	}

	// A missing secret falls back to a dev-only value; production refuses to
	// start without one.
	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required when ENVIRONMENT=production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
