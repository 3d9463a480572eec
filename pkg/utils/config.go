package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Email    EmailConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	// AllowedOrigins feeds CORS. "*" allows any origin.
	AllowedOrigins []string
}

// DatabaseConfig selects the storage backend. Driver is "postgres" or "memory".
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// RedisConfig is optional. An empty Addr disables caching, idempotency,
// rate limiting and seat-map events.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RabbitMQConfig is optional. An empty URL makes notifications synchronous.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type BookingConfig struct {
	ServiceFeePerSeat decimal.Decimal
	StorageTimeout    time.Duration
	PaymentTimeout    time.Duration
	HookTimeout       time.Duration
	IdempotencyTTL    time.Duration
	CommitRateLimit   int
	CommitRateWindow  time.Duration
	// DeclineAmountOver makes the simulated gateway decline larger totals. Zero disables it.
	DeclineAmountOver decimal.Decimal
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "cinema-reservation")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("STORAGE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("NOTIFY_QUEUE", "booking.confirmed")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SERVICE_FEE_PER_SEAT", "1.50")
	v.SetDefault("STORAGE_TIMEOUT", "3s")
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("HOOK_TIMEOUT", "5s")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("COMMIT_RATE_LIMIT", 10)
	v.SetDefault("COMMIT_RATE_WINDOW", "1m")
	v.SetDefault("PAYMENT_DECLINE_AMOUNT_OVER", "0")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	fee, err := decimal.NewFromString(v.GetString("SERVICE_FEE_PER_SEAT"))
	if err != nil {
		return nil, fmt.Errorf("parse SERVICE_FEE_PER_SEAT: %w", err)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("SERVICE_FEE_PER_SEAT must not be negative")
	}

	declineOver, err := decimal.NewFromString(v.GetString("PAYMENT_DECLINE_AMOUNT_OVER"))
	if err != nil {
		return nil, fmt.Errorf("parse PAYMENT_DECLINE_AMOUNT_OVER: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),

			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:      v.GetString("STORAGE_DRIVER"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("NOTIFY_QUEUE"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		Booking: BookingConfig{
			ServiceFeePerSeat: fee,
			StorageTimeout:    v.GetDuration("STORAGE_TIMEOUT"),
			PaymentTimeout:    v.GetDuration("PAYMENT_TIMEOUT"),
			HookTimeout:       v.GetDuration("HOOK_TIMEOUT"),
			IdempotencyTTL:    v.GetDuration("IDEMPOTENCY_TTL"),
			CommitRateLimit:   v.GetInt("COMMIT_RATE_LIMIT"),
			CommitRateWindow:  v.GetDuration("COMMIT_RATE_WINDOW"),
			DeclineAmountOver: declineOver,
		},
	}

	return config, nil
}

// DefaultBookingConfig is what LoadConfig produces without overrides.
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		ServiceFeePerSeat: decimal.RequireFromString("1.50"),
		StorageTimeout:    3 * time.Second,
		PaymentTimeout:    10 * time.Second,
		HookTimeout:       5 * time.Second,
		IdempotencyTTL:    24 * time.Hour,
		CommitRateLimit:   10,
		CommitRateWindow:  time.Minute,
	}
}

// splitList parses a comma separated env value.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
