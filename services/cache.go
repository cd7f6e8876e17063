package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"github.com/go-redis/redis/v8"
)

const (
	categoryListKey = "categories:all"
	categoryListTTL = 5 * time.Minute
)

// CategoryCache keeps the full category list in Redis. A nil client turns
// every call into a miss, so callers never need to check.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client) *CategoryCache {
	return &CategoryCache{client: client, ttl: categoryListTTL}
}

// Get returns the cached list and whether it was found.
func (c *CategoryCache) Get(ctx context.Context) ([]models.Category, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, categoryListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Category cache read failed: %v", err)
		}
		return nil, false
	}
	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		log.Printf("Category cache holds invalid data: %v", err)
		return nil, false
	}
	return categories, true
}

func (c *CategoryCache) Set(ctx context.Context, categories []models.Category) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, categoryListKey, raw, c.ttl).Err(); err != nil {
		log.Printf("Category cache write failed: %v", err)
	}
}

// Invalidate drops the cached list after any category or subcategory write.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, categoryListKey).Err(); err != nil {
		log.Printf("Category cache invalidation failed: %v", err)
	}
}
