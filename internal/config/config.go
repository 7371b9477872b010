package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/internal/validators"
)

// Config содержит конфигурацию сервера
type Config struct {
	Port             int
	MaxPurchasePrice float64
	MaxHorizonYears  int
	MaxLoanMonths    int
	MaxRate          float64
	CacheTTL         time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
	OTELEndpoint     string
	OTELServiceName  string
	LogLevel         string
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл, если он существует (игнорируем ошибку)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvInt("PORT", 8000),
		MaxPurchasePrice: getEnvFloat("MAX_PURCHASE_PRICE", 1e9),
		MaxHorizonYears:  getEnvInt("MAX_HORIZON_YEARS", 50),
		MaxLoanMonths:    getEnvInt("MAX_LOAN_MONTHS", 600),
		MaxRate:          getEnvFloat("MAX_RATE", 100),
		CacheTTL:         getEnvDuration("CACHE_TTL", 15*time.Minute),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 30),
		OTELEndpoint:     getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName:  getEnvString("OTEL_SERVICE_NAME", "rentability-engine"),
		LogLevel:         getEnvString("LOG_LEVEL", "INFO"),
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// EngineLimits возвращает ограничения входных данных для движка расчета
func (c *Config) EngineLimits() validators.Limits {
	return validators.Limits{
		MaxPurchasePrice: decimal.NewFromFloat(c.MaxPurchasePrice),
		MaxHorizonYears:  c.MaxHorizonYears,
		MaxLoanMonths:    c.MaxLoanMonths,
		MaxRate:          decimal.NewFromFloat(c.MaxRate),
	}
}
