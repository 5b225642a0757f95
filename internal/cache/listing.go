// Package cache keeps rendered product listing pages in Redis.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookheaven/internal/models"

	"github.com/redis/go-redis/v9"
)

const versionKey = "products:list:version"

// Config holds Redis connection details.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ListingCache is a Redis backed read-through cache for listing pages.
// Invalidation bumps a version counter that is part of every key, so stale
// pages are never read again and expire on their own.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewListingCache creates a ListingCache on an existing client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// key builds products:list:<version>:<md5 of the normalized query>.
func (c *ListingCache) key(ctx context.Context, q models.ProductQuery) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read listing version: %w", err)
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to marshal listing query: %w", err)
	}
	sum := md5.Sum(raw)
	return fmt.Sprintf("products:list:%d:%s", version, hex.EncodeToString(sum[:])), nil
}

// Get returns the cached page for q, or nil on a miss, together with the key
// for q under the listing version read by this call. Set must be given that
// key, so a page loaded before an invalidation lands under the old version.
func (c *ListingCache) Get(ctx context.Context, q models.ProductQuery) (*models.ProductPage, string, error) {
	key, err := c.key(ctx, q)
	if err != nil {
		return nil, "", err
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, key, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read listing %s: %w", key, err)
	}
	var page models.ProductPage
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, key, fmt.Errorf("failed to decode listing %s: %w", key, err)
	}
	return &page, key, nil
}

// Set stores page under a key returned by Get.
func (c *ListingCache) Set(ctx context.Context, key string, page *models.ProductPage) error {
	val, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write listing %s: %w", key, err)
	}
	return nil
}

// Invalidate orphans every cached page.
func (c *ListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump listing version: %w", err)
	}
	return nil
}
