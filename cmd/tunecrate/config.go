package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tunecrate/internal/postgres"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	Database       postgres.Config
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// loadConfig reads settings from the environment. The database account
// variables have no defaults: a missing one fails startup rather than
// connecting with a guessed identity.
func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	var missing []string
	required := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	dbCfg := postgres.Config{
		User:     required("DB_USER"),
		Password: required("DB_PASSWORD"),
		Name:     required("DB_NAME"),
		Host:     envOrDefault("DB_HOST", "localhost"),
		SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
	}
	secret := required("JWT_SECRET")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	if raw := os.Getenv("DB_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DB_PORT %q", raw)
		}
		dbCfg.Port = port
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))
	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	return Config{
		Database:       dbCfg,
		Addr:           addr,
		JWTSecret:      secret,
		TokenTTL:       24 * time.Hour,
		AllowedOrigins: origins,
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
