package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Database configuration
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// Session configuration (conversation bindings per browser session)
	Session struct {
		CookieName string
		TTL        time.Duration
		RedisAddr  string
		RedisDB    int
	}

	// Completion API configuration
	Completion struct {
		Provider    string
		Model       string
		APIKey      string
		BaseURL     string
		MaxTokens   int
		Temperature float64
		Timeout     time.Duration
		Fallback    string
	}

	// JWT configuration (staff auth)
	JWT struct {
		Secret string
		Expiry time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		TrustedProxies []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Uploads (character avatars)
	Uploads struct {
		Dir        string
		MaxSize    int64
		PublicPath string
	}
}

var (
	instance *Config
	once     sync.Once
)

// FallbackReply is returned (and persisted) when the completion call fails.
const FallbackReply = "An error occurred while contacting the assistant."

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8080")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
		instance.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+instance.Server.Port)

		// Database config
		instance.Database.Host = getEnvString("DB_HOST", "localhost")
		instance.Database.Port = getEnvString("DB_PORT", "5432")
		instance.Database.User = getEnvString("DB_USER", "postgres")
		instance.Database.Password = getEnvString("DB_PASSWORD", "postgres")
		instance.Database.Name = getEnvString("DB_NAME", "character-chat")
		instance.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
		instance.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
		instance.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

		// Session config
		instance.Session.CookieName = getEnvString("SESSION_COOKIE", "chat_session")
		instance.Session.TTL = getEnvDuration("SESSION_TTL", 14*24*time.Hour)
		instance.Session.RedisAddr = getEnvString("REDIS_ADDR", "")
		instance.Session.RedisDB = getEnvInt("REDIS_DB", 0)

		// Completion config
		instance.Completion.Provider = getEnvString("COMPLETION_PROVIDER", "openai")
		instance.Completion.Model = getEnvString("COMPLETION_MODEL", "gpt-3.5-turbo")
		instance.Completion.APIKey = getEnvString("OPENAI_API_KEY", "")
		instance.Completion.BaseURL = getEnvString("COMPLETION_BASE_URL", "")
		instance.Completion.MaxTokens = getEnvInt("COMPLETION_MAX_TOKENS", 1024)
		instance.Completion.Temperature = getEnvFloat("COMPLETION_TEMPERATURE", 0.7)
		instance.Completion.Timeout = getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second)
		instance.Completion.Fallback = getEnvString("COMPLETION_FALLBACK", FallbackReply)

		// JWT config
		instance.JWT.Secret = getEnvString("JWT_SECRET", "default-jwt-secret-do-not-use-in-production")
		instance.JWT.Expiry = getEnvDuration("JWT_EXPIRY", 24*time.Hour)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Security.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1"})
		instance.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Uploads config
		instance.Uploads.Dir = getEnvString("UPLOADS_DIR", "uploads")
		instance.Uploads.MaxSize = getEnvInt64("UPLOADS_MAX_SIZE", 10<<20) // 10MB
		instance.Uploads.PublicPath = getEnvString("UPLOADS_PUBLIC_PATH", "/uploads")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
