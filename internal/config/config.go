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

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	CORSOrigins string

	DatabaseURL       string
	DatabaseDriver    string
	MigrationsEnabled bool

	RedisAddr     string
	RedisPassword string
	GuestCartTTL  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	CartMergePolicy string

	ShippingFreeThreshold decimal.Decimal
	ShippingStandardPrice decimal.Decimal
	ShippingExpressPrice  decimal.Decimal

	LowStockThreshold int
}

// Load reads `.env` when present and then the process environment.
// Malformed numeric or duration values fall back to their defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	return Config{
		Addr:        getEnvOrDefault("APP_ADDR", ":8080"),
		CORSOrigins: getEnvOrDefault("CORS_ORIGINS", "*"),

		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
		DatabaseDriver:    getEnvOrDefault("DATABASE_DRIVER", "pgx"),
		MigrationsEnabled: getBoolEnv("MIGRATIONS_ENABLED", true),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		GuestCartTTL:  getDurationEnv("GUEST_CART_TTL", 30*24*time.Hour),

		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 72*time.Hour),

		CartMergePolicy: strings.ToLower(getEnvOrDefault("CART_MERGE_POLICY", "overwrite")),

		ShippingFreeThreshold: getDecimalEnv("SHIPPING_FREE_THRESHOLD", decimal.NewFromInt(150)),
		ShippingStandardPrice: getDecimalEnv("SHIPPING_STANDARD_PRICE", decimal.RequireFromString("9.99")),
		ShippingExpressPrice:  getDecimalEnv("SHIPPING_EXPRESS_PRICE", decimal.NewFromInt(15)),

		LowStockThreshold: getIntEnv("LOW_STOCK_THRESHOLD", 5),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBoolEnv(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnvOrDefault(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(getEnvOrDefault(key, ""))
	if err != nil || v.IsNegative() {
		return defaultValue
	}
	return v
}
