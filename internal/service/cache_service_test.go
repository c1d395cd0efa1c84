package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	var dest map[string]int
	assert.False(t, cache.Get(context.Background(), DashboardKey("c1"), &dest))

	cache.Set(context.Background(), DashboardKey("c1"), map[string]int{"clients": 3}, 0)
	assert.True(t, cache.Get(context.Background(), DashboardKey("c1"), &dest))
	assert.Equal(t, 3, dest["clients"])

	cache.InvalidateCoach(context.Background(), "c1")
	assert.False(t, cache.Get(context.Background(), DashboardKey("c1"), &dest))
	assert.Equal(t, []string{"dash:coach:c1:*"}, repo.deleted)
}

func TestInvalidateCoachLeavesPrefixSiblings(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	cache.Set(ctx, DashboardKey("c1"), map[string]int{"clients": 1}, 0)
	cache.Set(ctx, DashboardKey("c10"), map[string]int{"clients": 10}, 0)

	cache.InvalidateCoach(ctx, "c1")

	var dest map[string]int
	assert.False(t, cache.Get(ctx, DashboardKey("c1"), &dest))
	assert.True(t, cache.Get(ctx, DashboardKey("c10"), &dest))
	assert.Equal(t, 10, dest["clients"])
}

func TestCacheServiceBackendErrorIsMiss(t *testing.T) {
	repo := newMemoryCache()
	repo.getErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest map[string]int
	assert.False(t, cache.Get(context.Background(), "k", &dest))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)
	cache.Set(context.Background(), "k", 1, 0)
	assert.Empty(t, repo.items)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	nilCache.InvalidateCoach(context.Background(), "c1")
}
