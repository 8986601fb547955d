package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer       string // Issuer claim for access tokens (default: gamehub-user)
	DatabaseFile string // Path to SQLite database file (default: ./user.db)
	RedisAddr    string // Redis address for the presence registry (default: localhost:6379)
	RedisDB      int    // Redis database number (default: 0)

	// Remote identity provider (authorization code flow).
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthProfileURL   string
	OAuthTimeout      time.Duration // Upstream call timeout (default: 10s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired token sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:       getEnvOrDefault("USER_ISSUER", "gamehub-user"),
		DatabaseFile: getEnvOrDefault("USER_DATABASE_FILE", "user.db"),
		RedisAddr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvIntOrDefault("REDIS_DB", 0),

		OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthRedirectURL:  os.Getenv("OAUTH_REDIRECT_URL"),
		OAuthAuthURL:      getEnvOrDefault("OAUTH_AUTH_URL", "https://api.intra.42.fr/oauth/authorize"),
		OAuthTokenURL:     getEnvOrDefault("OAUTH_TOKEN_URL", "https://api.intra.42.fr/oauth/token"),
		OAuthProfileURL:   getEnvOrDefault("OAUTH_PROFILE_URL", "https://api.intra.42.fr/v2/me"),
		OAuthTimeout:      getEnvDurationOrDefault("OAUTH_TIMEOUT", 10*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
