package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
)

type fakeStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: map[string]int64{}}
}

func (s *fakeStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestLimiterBlocksOverLimit(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter("login", store, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4", "a@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8", "b@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterEmailIsCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	l := NewLimiter("login", store, 1, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "", "A@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "", "a@example.com ")
	require.NoError(t, err)
	assert.False(t, ok)

	for key := range store.counts {
		assert.NotContains(t, key, "example.com")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLoginLimiter(&config.Config{LoginRateLimit: 1, LoginRateWindow: time.Minute}, nil)
	assert.False(t, l.Enabled())

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(context.Background(), "1.2.3.4", "a@example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestLimiterStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("redis down")
	l := NewLimiter("login", store, 1, time.Minute)

	_, err := l.Allow(context.Background(), "1.2.3.4", "")
	assert.Error(t, err)
}
