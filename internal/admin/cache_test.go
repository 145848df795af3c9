package admin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	stats Stats
	err   error
}

func (s *countingSource) Stats(context.Context) (*Stats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := s.stats
	return &out, nil
}

type memoryCache struct {
	entries map[string][]byte
	readErr error
}

func (m *memoryCache) CacheKey(name string) string { return "cache:" + name }

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func TestCachedStatsServesFromCache(t *testing.T) {
	src := &countingSource{stats: Stats{Products: 4, Customers: 9, Support: 1}}
	cache := &memoryCache{entries: map[string][]byte{}}
	cs, err := NewCachedStats(src, cache, time.Minute, nil)
	require.NoError(t, err)

	first, err := cs.Stats(context.Background())
	require.NoError(t, err)
	second, err := cs.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, *first, *second)
	assert.Contains(t, cache.entries, "cache:storefront-stats")
}

func TestCachedStatsFallsBackOnCacheError(t *testing.T) {
	src := &countingSource{stats: Stats{Products: 2}}
	cache := &memoryCache{entries: map[string][]byte{}, readErr: errors.New("redis down")}
	cs, err := NewCachedStats(src, cache, time.Minute, nil)
	require.NoError(t, err)

	got, err := cs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Products)
	assert.Equal(t, 1, src.calls)
}

func TestCachedStatsPropagatesSourceError(t *testing.T) {
	cs, err := NewCachedStats(&countingSource{err: errors.New("db down")}, &memoryCache{entries: map[string][]byte{}}, time.Minute, nil)
	require.NoError(t, err)
	_, err = cs.Stats(context.Background())
	require.Error(t, err)
}

func TestNewCachedStatsValidates(t *testing.T) {
	_, err := NewCachedStats(nil, &memoryCache{}, time.Minute, nil)
	assert.Error(t, err)
	_, err = NewCachedStats(&countingSource{}, nil, time.Minute, nil)
	assert.Error(t, err)
	_, err = NewCachedStats(&countingSource{}, &memoryCache{}, 0, nil)
	assert.Error(t, err)
}
