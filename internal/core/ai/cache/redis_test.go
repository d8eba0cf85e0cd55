package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a real server: REDIS_ADDR=localhost:6379 go test ./...
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, RedisOptions{Addr: addr, Options: Options{TTL: time.Minute, Limit: 2}})
	require.NoError(t, err)
	defer s.Close()

	key := "test-" + t.Name() + time.Now().Format(time.RFC3339Nano)
	require.NoError(t, s.Remember(ctx, key, []string{"A", "B", "C"}))

	names, err := s.Recall(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, names)
	assert.Equal(t, "redis", s.Stats()["backend"])
}
