package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Telegram TelegramConfig
	Jobs     JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// GatewayConfig holds the payment gateway credentials and endpoints
type GatewayConfig struct {
	BaseURL        string
	APIKey         string
	IPNSecret      string
	CallbackURL    string
	PayoutEmail    string
	PayoutPassword string
	Timeout        time.Duration
}

// TelegramConfig holds the admin alert bot settings. An empty token disables it.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

// JobsConfig holds background job intervals
type JobsConfig struct {
	OutboxInterval     time.Duration
	ReconcileInterval  time.Duration
	ReconcileAfter     time.Duration
	PlanExpiryInterval time.Duration
}

// IsProduction reports whether development-only paths must be disabled
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lottery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Gateway: GatewayConfig{
			BaseURL:        getEnv("NOWPAYMENTS_BASE_URL", "https://api.nowpayments.io/v1"),
			APIKey:         getEnv("NOWPAYMENTS_API_KEY", ""),
			IPNSecret:      getEnv("NOWPAYMENTS_IPN_SECRET", ""),
			CallbackURL:    getEnv("NOWPAYMENTS_CALLBACK_URL", "http://localhost:8080/api/v1/webhooks/payments"),
			PayoutEmail:    getEnv("NOWPAYMENTS_PAYOUT_EMAIL", ""),
			PayoutPassword: getEnv("NOWPAYMENTS_PAYOUT_PASSWORD", ""),
			Timeout:        getEnvAsDuration("NOWPAYMENTS_TIMEOUT", 15*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID: getEnvAsInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
		},
		Jobs: JobsConfig{
			OutboxInterval:     getEnvAsDuration("OUTBOX_INTERVAL", 5*time.Second),
			ReconcileInterval:  getEnvAsDuration("RECONCILE_INTERVAL", 2*time.Minute),
			ReconcileAfter:     getEnvAsDuration("RECONCILE_AFTER", 20*time.Minute),
			PlanExpiryInterval: getEnvAsDuration("PLAN_EXPIRY_INTERVAL", time.Hour),
		},
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
