package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisOptions Redis 連線與記憶設定
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Options
}

// RedisStore 多個實例共用的推薦記憶，每個 key 是一個 list（新到舊）
type RedisStore struct {
	client *redis.Client
	opts   Options
}

// NewRedisStore 創建 Redis 推薦記憶並測試連線
func NewRedisStore(ctx context.Context, ro RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     ro.Addr,
		Password: ro.Password,
		DB:       ro.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, ro.Options), nil
}

func newRedisStore(client *redis.Client, opts Options) *RedisStore {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	logStoreReady("redis", opts)
	return &RedisStore{client: client, opts: opts}
}

// Recall 取得 key 近期推薦過的菜名，新到舊
func (s *RedisStore) Recall(ctx context.Context, key string) ([]string, error) {
	names, err := s.client.LRange(ctx, generateKey(key), 0, int64(s.opts.Limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return names, nil
}

// Remember 追加菜名並重設存活時間
func (s *RedisStore) Remember(ctx context.Context, key string, names []string) error {
	values := make([]interface{}, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return nil
	}

	k := generateKey(key)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, k, values...)
	pipe.LTrim(ctx, k, 0, int64(s.opts.Limit-1))
	pipe.Expire(ctx, k, s.opts.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats Redis 連線池統計
func (s *RedisStore) Stats() map[string]interface{} {
	ps := s.client.PoolStats()
	return map[string]interface{}{
		"backend":     "redis",
		"hits":        ps.Hits,
		"misses":      ps.Misses,
		"timeouts":    ps.Timeouts,
		"total_conns": ps.TotalConns,
		"idle_conns":  ps.IdleConns,
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
