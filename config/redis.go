package config

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis establishes connection to Redis. It returns nil when REDIS_ADDR
// is unset or the server cannot be reached; callers treat nil as "no cache".
func ConnectRedis(s Settings) *redis.Client {
	if s.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, category cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         s.RedisAddr,
		Password:     s.RedisPassword,
		DB:           s.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		log.Println("Category cache will be disabled")
		client.Close()
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
