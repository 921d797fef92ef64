package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// MongoDB
	MongoURI string
	MongoDB  string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Uploads
	UploadDir      string
	MaxUploadSize  int64 // bytes, per file
	MaxUploadFiles int

	// CORS
	CORSOrigins []string

	// Observability
	OTLPEndpoint string
}

// LoadDotEnv loads a .env file into the environment for local development.
// Existing env vars take precedence; a missing file is not an error.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "ang-technologies"),

		JWTSecret:    getEnv("JWT_SECRET", "catalog-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 24*time.Hour),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadSize:  int64(getEnvInt("MAX_UPLOAD_SIZE", 5*1024*1024)),
		MaxUploadFiles: getEnvInt("MAX_UPLOAD_FILES", 5),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
