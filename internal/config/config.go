// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	// HTTP server
	Port string

	// Persistence backend: "firestore" or "memory"
	StoreBackend string
	// Firestore
	GCPProjectID string
	Collection   string

	// Advice generation; empty key disables the external model
	GeminiAPIKey string
	GeminiModel  string

	// Monthly spending limit applied at startup; 0 means disabled
	MonthlyLimit float64
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "firestore"),
		GCPProjectID: getEnv("GCP_PROJECT_ID", ""),
		Collection:   getEnv("FIRESTORE_COLLECTION", "transactions"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		MonthlyLimit: getEnvFloat("MONTHLY_LIMIT", 0),
	}
}

// Validate reports configuration mistakes in one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "memory":
	case "firestore":
		if c.GCPProjectID == "" {
			problems = append(problems, "GCP_PROJECT_ID is required for the firestore backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend %q: must be firestore or memory", c.StoreBackend))
	}

	if c.MonthlyLimit < 0 {
		problems = append(problems, "MONTHLY_LIMIT must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
