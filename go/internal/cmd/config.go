package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type ServerConfig struct {
	Port        string
	JWTSecret   string
	JWTIssuer   string
	NATSURL     string // Relay is disabled when empty
	LogLevel    zerolog.Level
	CORSOrigins []string
}

func loadServerConfig() ServerConfig {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return ServerConfig{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   getEnv("JWT_ISSUER", "reckoning"),
		NATSURL:     os.Getenv("NATS_URL"),
		LogLevel:    level,
		CORSOrigins: []string{getEnv("CORS_ORIGIN", "*")},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
