package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/aevon-lab/pulse/internal/observability"
	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

const redisKeyPrefix = "pulse:geo:"

// Cache stores resolved countries by coordinate key.
// Get reports ok=false on a miss; an error means the backend itself failed.
type Cache interface {
	Get(ctx context.Context, key string) (country string, ok bool, err error)
	Set(ctx context.Context, key, country string) error
	Backend() string
}

// CacheKey rounds both coordinates to 4 decimals (about 11 m).
func CacheKey(lat, lon float64) string {
	return strconv.FormatFloat(round4(lat), 'f', 4, 64) + "," + strconv.FormatFloat(round4(lon), 'f', 4, 64)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// MemoryCache is a process-local LRU with per-entry expiry.
type MemoryCache struct {
	lru *lru.LRU[string, string]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{lru: lru.NewLRU[string, string](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	country, ok := c.lru.Get(key)
	return country, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, country string) error {
	c.lru.Add(key, country)
	return nil
}

func (c *MemoryCache) Backend() string { return BackendMemory }

// RedisCache shares resolved countries between replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL (redis://host:port/db) and pings it.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	country, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return country, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, country string) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, country, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Backend() string { return BackendRedis }

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedGeocoder consults a Cache before delegating to the upstream Geocoder.
// Cache failures are logged and fall through; they never fail a lookup.
type CachedGeocoder struct {
	next    Geocoder
	cache   Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder wraps next. A nil cache returns next unchanged.
func NewCachedGeocoder(next Geocoder, cache Cache, metrics *observability.Metrics) Geocoder {
	if cache == nil {
		return next
	}
	return &CachedGeocoder{next: next, cache: cache, metrics: metrics}
}

func (g *CachedGeocoder) Country(ctx context.Context, lat, lon float64) (string, error) {
	key := CacheKey(lat, lon)
	backend := g.cache.Backend()

	country, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		g.metrics.RecordGeocodeCache(backend, "error")
		slog.Warn("Geocode cache read failed", "backend", backend, "key", key, "error", err)
	case ok:
		g.metrics.RecordGeocodeCache(backend, "hit")
		return country, nil
	default:
		g.metrics.RecordGeocodeCache(backend, "miss")
	}

	country, err = g.next.Country(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	if err := g.cache.Set(ctx, key, country); err != nil {
		slog.Warn("Geocode cache write failed", "backend", backend, "key", key, "error", err)
	}
	return country, nil
}

// CacheConfig selects and sizes the geocode cache.
type CacheConfig struct {
	Backend  string
	Size     int
	TTL      time.Duration
	RedisURL string
}

// NewCache builds the configured backend. BackendNone (or empty) returns nil.
func NewCache(ctx context.Context, cfg CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown geocode cache backend %q", cfg.Backend)
}
