package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Payout   PayoutConfig
	Nats     NatsConfig
	Redis    RedisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret         string
	WebhookSecret     string
	Debug             bool
	KingWindow        time.Duration
	KingTokensDefault int64
	MinimumRedemption int64
	TokenUSDRate      int64
	TipMaxRetries     int
}

// PayoutConfig holds payout provider settings
type PayoutConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NatsConfig holds NATS JetStream settings
type NatsConfig struct {
	URL        string
	StreamName string
}

// RedisConfig holds redis settings for the redemption lock
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "livetokens"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
			Debug:             getEnvBool("DEBUG", false),
			KingWindow:        time.Duration(getEnvInt("KING_WINDOW_HOURS", 24)) * time.Hour,
			KingTokensDefault: getEnvInt("KING_TOKENS_DEFAULT", 100),
			MinimumRedemption: getEnvInt("MINIMUM_REDEMPTION", 100),
			TokenUSDRate:      getEnvInt("TOKEN_USD_RATE", 8),
			TipMaxRetries:     int(getEnvInt("TIP_MAX_RETRIES", 3)),
		},
		Payout: PayoutConfig{
			BaseURL: getEnv("PAYOUT_BASE_URL", ""),
			APIKey:  getEnv("PAYOUT_API_KEY", ""),
			Timeout: time.Duration(getEnvInt("PAYOUT_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Nats: NatsConfig{
			URL:        getEnv("NATS_URL", ""),
			StreamName: getEnv("NATS_STREAM_NAME", "TIPS"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvInt("REDIS_DB", 0)),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvBool gets a boolean environment variable with a fallback default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
