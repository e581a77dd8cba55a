package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
)

func newTestCache(t *testing.T, cfg *config.CacheConfig) *DataCache {
	t.Helper()

	store, err := NewBadgerStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewDataCache(store, cfg, zap.NewNop())
}

func enabledConfig(ttl time.Duration) *config.CacheConfig {
	return &config.CacheConfig{Enabled: true, TTL: ttl}
}

func testQuery() domain.IndicatorQuery {
	return domain.IndicatorQuery{
		IndicatorID: 186,
		RegionID:    629,
		Years:       []int{2020, 2021},
		Genders:     []domain.Gender{domain.GenderTotal},
	}
}

func testPoints() []domain.DataPoint {
	v := 12.5
	return []domain.DataPoint{
		{IndicatorID: 186, RegionID: 629, Year: 2020, Gender: domain.GenderTotal, Value: &v},
	}
}

func TestDataCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, enabledConfig(time.Hour))
	ctx := context.Background()

	t.Run("miss before set", func(t *testing.T) {
		_, ok, err := c.Get(ctx, testQuery())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, testQuery(), testPoints()))

		payload, ok, err := c.Get(ctx, testQuery())
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, payload, 1)
		assert.Equal(t, 2020, payload[0].Year)
		require.NotNil(t, payload[0].Value)
		assert.InDelta(t, 12.5, *payload[0].Value, 1e-9)
	})

	t.Run("hit with reordered query parameters", func(t *testing.T) {
		reordered := testQuery()
		reordered.Years = []int{2021, 2020}

		_, ok, err := c.Get(ctx, reordered)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("different query misses", func(t *testing.T) {
		other := testQuery()
		other.IndicatorID = 322

		_, ok, err := c.Get(ctx, other)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDataCache_TTL(t *testing.T) {
	c := newTestCache(t, enabledConfig(time.Hour))
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, testQuery(), testPoints()))

	t.Run("fresh entry within ttl", func(t *testing.T) {
		current = current.Add(59 * time.Minute)
		_, ok, err := c.Get(ctx, testQuery())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("entry at ttl boundary expires", func(t *testing.T) {
		current = current.Add(time.Minute)
		_, ok, err := c.Get(ctx, testQuery())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry was deleted from the store", func(t *testing.T) {
		raw, err := c.store.Get(ctx, testQuery().CanonicalKey())
		require.NoError(t, err)
		assert.Nil(t, raw)
	})
}

func TestDataCache_EmptyPayload(t *testing.T) {
	c := newTestCache(t, enabledConfig(time.Hour))
	ctx := context.Background()

	// пустой ответ API - валидный результат, он тоже кешируется
	require.NoError(t, c.Set(ctx, testQuery(), nil))

	payload, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, payload)
	assert.Empty(t, payload)
}

func TestDataCache_Disabled(t *testing.T) {
	c := newTestCache(t, &config.CacheConfig{Enabled: false, TTL: time.Hour})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testQuery(), testPoints()))

	_, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDataCache_CorruptEntry(t *testing.T) {
	c := newTestCache(t, enabledConfig(time.Hour))
	ctx := context.Background()

	key := testQuery().CanonicalKey()
	require.NoError(t, c.store.Set(ctx, key, []byte("not json")))

	_, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.False(t, ok)

	// битая запись удаляется при чтении
	raw, err := c.store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDataCache_Clear(t *testing.T) {
	c := newTestCache(t, enabledConfig(time.Hour))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testQuery(), testPoints()))
	require.NoError(t, c.Clear(ctx))

	_, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.False(t, ok)
}
