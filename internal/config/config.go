package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type Config struct {
	Port        string
	CORSOrigins string
	JWTSecret   string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Gateway  GatewayConfig
	Wallet   WalletDefaults
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". For sqlite, Name is the file path
	// or DSN.
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type GatewayConfig struct {
	Timeout         time.Duration
	SimLatency      time.Duration
	SimFailureRate  float64
	ProviderBaseURL string
	ProviderAPIKey  string
	StripeSecretKey string
	StripeCurrency  string
}

type WalletDefaults struct {
	Currency             string
	DailyLimit           decimal.Decimal
	MonthlyLimit         decimal.Decimal
	MaxTransactionAmount decimal.Decimal
	MaxRetries           int
}

// Load reads the full service configuration from the environment.
func Load() *Config {
	return &Config{
		Port:        GetEnv("PORT", "3000"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		JWTSecret:   GetEnv("JWT_SECRET", "arena"),
		Database: DatabaseConfig{
			Driver:          GetEnv("DB_DRIVER", "postgres"),
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "arena"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  GetBoolEnv("REDIS_ENABLED", true),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      GetDurationEnv("CACHE_TTL", 60*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled: GetBoolEnv("KAFKA_ENABLED", false),
			Brokers: strings.Split(GetEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   GetEnv("KAFKA_TOPIC", "wallet.transactions"),
		},
		Gateway: GatewayConfig{
			Timeout:         GetDurationEnv("GATEWAY_TIMEOUT", 10*time.Second),
			SimLatency:      GetDurationEnv("GATEWAY_SIM_LATENCY", 500*time.Millisecond),
			SimFailureRate:  GetFloatEnv("GATEWAY_SIM_FAILURE_RATE", 0.1),
			ProviderBaseURL: GetEnv("GATEWAY_PROVIDER_URL", ""),
			ProviderAPIKey:  GetEnv("GATEWAY_PROVIDER_API_KEY", ""),
			StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
			StripeCurrency:  GetEnv("STRIPE_CURRENCY", "usd"),
		},
		Wallet: WalletDefaults{
			Currency:             GetEnv("WALLET_CURRENCY", "BDT"),
			DailyLimit:           GetDecimalEnv("WALLET_DAILY_LIMIT", decimal.NewFromInt(10000)),
			MonthlyLimit:         GetDecimalEnv("WALLET_MONTHLY_LIMIT", decimal.NewFromInt(100000)),
			MaxTransactionAmount: GetDecimalEnv("WALLET_MAX_TRANSACTION", decimal.NewFromInt(50000)),
			MaxRetries:           GetIntEnv("TRANSACTION_MAX_RETRIES", 3),
		},
	}
}
