// Package redis provides a Redis-backed verdict cache, for deployments where
// several runs on different machines share oracle answers.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure VerdictCache implements the interface.
var _ driven.VerdictCache = (*VerdictCache)(nil)

// DefaultKeyPrefix namespaces verdict keys.
const DefaultKeyPrefix = "kbyv:verdict:"

// NewClient parses a redis:// URL and verifies connectivity.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: redis URL is empty", domain.ErrInvalidInput)
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// VerdictCache stores oracle verdicts as plain string values.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// VerdictCacheOption configures a VerdictCache.
type VerdictCacheOption func(*VerdictCache)

// WithTTL expires entries after ttl. Zero keeps them indefinitely.
func WithTTL(ttl time.Duration) VerdictCacheOption {
	return func(c *VerdictCache) {
		c.ttl = ttl
	}
}

// WithKeyPrefix replaces DefaultKeyPrefix.
func WithKeyPrefix(prefix string) VerdictCacheOption {
	return func(c *VerdictCache) {
		c.prefix = prefix
	}
}

// NewVerdictCache constructs a Redis-backed verdict cache.
func NewVerdictCache(client *redis.Client, opts ...VerdictCacheOption) *VerdictCache {
	c := &VerdictCache{
		client: client,
		prefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns a cached verdict. A missing or unrecognised value is a miss.
func (c *VerdictCache) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}

	v := domain.Verdict(val)
	if !v.IsValid() {
		return "", false, nil
	}
	return v, true, nil
}

// Put stores a verdict with the configured TTL.
func (c *VerdictCache) Put(ctx context.Context, key string, verdict domain.Verdict) error {
	if !verdict.IsValid() {
		return fmt.Errorf("%w: verdict %q", domain.ErrInvalidInput, verdict)
	}
	if err := c.client.Set(ctx, c.prefix+key, string(verdict), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *VerdictCache) Close() error {
	return c.client.Close()
}
