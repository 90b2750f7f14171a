// config.go - Handles configuration for the project

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs. It is built once in main and
// handed to constructors; nothing reads the environment after startup.
type Config struct {
	Port string // HTTP listen port

	DBDriver    string // "sqlite" or "postgres"
	DBPath      string // SQLite database file
	DatabaseURL string // Postgres DSN

	SecretKey string        // HMAC key for access tokens
	TokenTTL  time.Duration // Access token lifetime

	StorageBackend    string // "local" or "s3"
	UploadDir         string // Root directory for the local backend, served at /uploads
	S3Bucket          string
	S3Region          string
	S3Endpoint        string // Custom endpoint (R2, MinIO, Supabase storage)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string // Public base URL objects are reachable under

	CORSOrigins []string

	RedisAddr          string // Enables the shared rate limiter when set
	RateLimitPerMinute int

	MQTTBroker string // Enables inventory event publishing when set
	MQTTTopic  string

	UniqueProductCodes bool   // Reject a second product with the same code for one owner
	SeedEmail          string // Seed demo data for this user at startup
}

// Load reads config from a .env file (when present) and environment variables,
// falling back to defaults suitable for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("config: could not read .env file:", err)
	}

	return &Config{
		Port: getEnv("PORT", "8000"),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "data.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SecretKey: getEnv("SECRET_KEY", "supersecret"),
		TokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,

		StorageBackend:    getEnv("STORAGE_BACKEND", "local"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicURL:       getEnv("S3_PUBLIC_URL", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),

		MQTTBroker: getEnv("MQTT_BROKER", ""),
		MQTTTopic:  getEnv("MQTT_TOPIC", "inventory/events"),

		UniqueProductCodes: getEnvBool("UNIQUE_PRODUCT_CODES", true),
		SeedEmail:          getEnv("SEED_EMAIL", ""),
	}
}

// getEnv returns the variable or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("config: %s=%q is not a boolean, using %t", key, value, fallback)
		return fallback
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
