package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RateLimitProfile holds the window and request budget for one named limiter.
type RateLimitProfile struct {
	Window      time.Duration
	MaxRequests int
}

type Config struct {
	Port        string
	Environment string

	RedisURL    string
	PostgresDSN string

	KafkaBrokers []string
	OrderTopic   string

	CartTTL       time.Duration
	SessionTTL    time.Duration
	CacheTTL      time.Duration
	CacheTagSlack time.Duration

	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	RateLimits map[string]RateLimitProfile
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:        getEnv("PORT", "8085"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL:    getEnv("REDIS_URL", "redis://redis:6379"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=checkout port=5432 sslmode=disable"),

		KafkaBrokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
		OrderTopic:   getEnv("ORDER_TOPIC", "order.confirmed"),

		CartTTL:       time.Hour * 24 * 7,
		SessionTTL:    getDurationEnv("CHECKOUT_SESSION_TTL_MIN", 30) * time.Minute,
		CacheTTL:      getDurationEnv("CACHE_TTL_MIN", 10) * time.Minute,
		CacheTagSlack: time.Minute,

		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),

		RateLimits: map[string]RateLimitProfile{
			"api":    {Window: time.Minute, MaxRequests: getIntEnv("RATE_LIMIT_API", 100)},
			"auth":   {Window: time.Minute, MaxRequests: getIntEnv("RATE_LIMIT_AUTH", 10)},
			"search": {Window: time.Minute, MaxRequests: getIntEnv("RATE_LIMIT_SEARCH", 30)},
			"admin":  {Window: time.Minute, MaxRequests: getIntEnv("RATE_LIMIT_ADMIN", 60)},
			"upload": {Window: time.Minute, MaxRequests: getIntEnv("RATE_LIMIT_UPLOAD", 5)},
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal int) time.Duration {
	return time.Duration(getIntEnv(key, defaultVal))
}
