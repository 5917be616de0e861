package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/rechargetravels/booking/logger"
)

// LoadEnv loads variables from a .env file when present. Deployed
// environments provide real env vars, so a missing file is not fatal.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.WarnLogger.Warnf("No .env file loaded: %v", err)
		return
	}
	logger.InfoLogger.Info("Environment variables loaded from .env")
}

// GetEnv returns the value for key or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
