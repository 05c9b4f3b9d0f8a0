package config

import (
	"os"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	ListenAddr string

	DatabaseURL string

	// IngestAPIKey is the bearer token the reporting client must
	// present on POST /api/stats/api-info.
	IngestAPIKey string

	// JWTSecret signs admin session tokens. Login is disabled when empty.
	JWTSecret string

	AdminUser     string
	AdminPassword string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		IngestAPIKey:  os.Getenv("APP_API_KEY"),
		JWTSecret:     os.Getenv("APP_JWT_SECRET"),
		AdminUser:     getenv("APP_ADMIN_USER", "admin"),
		AdminPassword: getenv("APP_ADMIN_PASSWORD", "changeme"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
