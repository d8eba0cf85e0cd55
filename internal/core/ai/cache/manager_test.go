package cache

import (
	"context"
	"testing"
	"time"

	"fridge-recipe/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RememberAndRecall(t *testing.T) {
	m := NewMemoryStore(Options{MaxSize: 10, TTL: time.Hour, Limit: 3})
	defer m.Close()
	ctx := context.Background()

	names, err := m.Recall(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, m.Remember(ctx, "s1", []string{"A", " ", "B"}))
	require.NoError(t, m.Remember(ctx, "s1", []string{"C", "D"}))

	names, err = m.Recall(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "B"}, names)

	other, err := m.Recall(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(2), stats["misses"])
}

func TestMemoryStore_Expiry(t *testing.T) {
	m := NewMemoryStore(Options{MaxSize: 10, TTL: time.Minute, Limit: 5})
	defer m.Close()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Remember(ctx, "s1", []string{"A"}))
	now = now.Add(2 * time.Minute)

	names, err := m.Recall(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, int64(1), m.Stats()["evictions"])
}

func TestMemoryStore_EvictsWhenFull(t *testing.T) {
	m := NewMemoryStore(Options{MaxSize: 2, TTL: time.Hour, Limit: 5})
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Remember(ctx, "a", []string{"1"}))
	require.NoError(t, m.Remember(ctx, "b", []string{"2"}))
	_, _ = m.Recall(ctx, "b") // b is now more used than a
	require.NoError(t, m.Remember(ctx, "c", []string{"3"}))

	assert.Equal(t, 2, m.Stats()["size"])
	gone, _ := m.Recall(ctx, "a")
	assert.Empty(t, gone)
	kept, _ := m.Recall(ctx, "b")
	assert.Equal(t, []string{"2"}, kept)
}

func TestNew_Backends(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(ctx, config.CacheConfig{Backend: "memory", MaxSize: 5, TTL: time.Hour})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(ctx, config.CacheConfig{Backend: "disk"})
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, generateKey("x"), generateKey("x"))
	assert.NotEqual(t, generateKey("x"), generateKey("y"))
	assert.Contains(t, generateKey("x"), "fridge:suggested:")
}
