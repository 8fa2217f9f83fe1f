package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes and returns a Redis client
func NewRedisClient(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		// The cache and rate limiter degrade gracefully without Redis,
		// so a failed ping is a warning, not a startup failure.
		log.Printf("Redis unreachable at startup: %v", err)
	} else {
		log.Println("Connected to Redis")
	}
	return client
}
