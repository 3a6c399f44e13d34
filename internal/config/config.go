package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the service needs. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Addr          string
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
	CORSOrigins   []string
	DefaultPosID  string

	// Seed credentials for the first admin user, applied only when the
	// users table is empty.
	AdminUser     string
	AdminPassword string

	MetricsEnabled bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:           ":" + getEnv("PORT", "8081"),
		DBPath:         getEnv("DB_PATH", "data/pos.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenDuration:  getDuration("TOKEN_DURATION", 12*time.Hour),
		CORSOrigins:    []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		DefaultPosID:   getEnv("POS_ID", "PV-0001"),
		AdminUser:      getEnv("ADMIN_USER", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin1234"),
		MetricsEnabled: getBool("PROMETHEUS_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
