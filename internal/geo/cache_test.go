package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aevon-lab/pulse/internal/observability"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls   int
	country string
	err     error
}

func (g *countingGeocoder) Country(context.Context, float64, float64) (string, error) {
	g.calls++
	return g.country, g.err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string) error {
	return errors.New("cache down")
}

func (failingCache) Backend() string { return "broken" }

func TestCacheKey_RoundsToFourDecimals(t *testing.T) {
	require.Equal(t, "-34.9011,-56.1645", CacheKey(-34.90111, -56.16453))
	require.Equal(t, CacheKey(10.00001, 20.00004), CacheKey(10.00002, 20.00001))
	require.Equal(t, "90.0000,-180.0000", CacheKey(90, -180))
}

func TestCachedGeocoder_MemoryHitSkipsUpstream(t *testing.T) {
	upstream := &countingGeocoder{country: "Uruguay"}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	g := NewCachedGeocoder(upstream, NewMemoryCache(16, time.Minute), metrics)

	for i := 0; i < 3; i++ {
		country, err := g.Country(context.Background(), -34.9011, -56.1645)
		require.NoError(t, err)
		require.Equal(t, "Uruguay", country)
	}

	require.Equal(t, 1, upstream.calls)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.GeocodeCacheTotal.WithLabelValues(BackendMemory, "miss")))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.GeocodeCacheTotal.WithLabelValues(BackendMemory, "hit")))
}

func TestCachedGeocoder_UpstreamErrorNotCached(t *testing.T) {
	upstream := &countingGeocoder{err: ErrCountryNotFound}
	cache := NewMemoryCache(16, time.Minute)
	g := NewCachedGeocoder(upstream, cache, nil)

	_, err := g.Country(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrCountryNotFound)
	require.Equal(t, 0, cache.lru.Len())
}

func TestCachedGeocoder_CacheFailureFallsThrough(t *testing.T) {
	upstream := &countingGeocoder{country: "Chile"}
	g := NewCachedGeocoder(upstream, failingCache{}, nil)

	country, err := g.Country(context.Background(), -33.45, -70.66)
	require.NoError(t, err)
	require.Equal(t, "Chile", country)
	require.Equal(t, 1, upstream.calls)
}

func TestNewCachedGeocoder_NilCacheReturnsNext(t *testing.T) {
	upstream := &countingGeocoder{country: "Peru"}
	require.Same(t, upstream, NewCachedGeocoder(upstream, nil, nil))
}

func TestRedisCache_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)

	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	_, ok, err := cache.Get(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "1.0000,2.0000", "Ghana"))
	require.True(t, mr.Exists(redisKeyPrefix+"1.0000,2.0000"))
	require.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"1.0000,2.0000"))

	country, ok, err := cache.Get(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ghana", country)

	mr.FastForward(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "1.0000,2.0000")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCachedGeocoder_RedisSharedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	first, err := NewRedisCache(ctx, "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer first.Close()
	second, err := NewRedisCache(ctx, "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer second.Close()

	upstream := &countingGeocoder{country: "Kenya"}
	_, err = NewCachedGeocoder(upstream, first, nil).Country(ctx, -1.2921, 36.8219)
	require.NoError(t, err)
	_, err = NewCachedGeocoder(upstream, second, nil).Country(ctx, -1.2921, 36.8219)
	require.NoError(t, err)

	require.Equal(t, 1, upstream.calls)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), "redis://"+addr, time.Minute)
	require.ErrorContains(t, err, "failed to connect to redis")
}

func TestNewCache_Backends(t *testing.T) {
	c, err := NewCache(context.Background(), CacheConfig{Backend: BackendNone})
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = NewCache(context.Background(), CacheConfig{Backend: BackendMemory, Size: 8, TTL: time.Minute})
	require.NoError(t, err)
	require.Equal(t, BackendMemory, c.Backend())

	_, err = NewCache(context.Background(), CacheConfig{Backend: "memcached"})
	require.ErrorContains(t, err, "unknown geocode cache backend")
}
