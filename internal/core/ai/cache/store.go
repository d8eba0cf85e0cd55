package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"fridge-recipe/internal/infrastructure/config"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 記住每個 session 近期推薦過的菜名
type Store interface {
	Recall(ctx context.Context, key string) ([]string, error)
	Remember(ctx context.Context, key string, names []string) error
	Stats() map[string]interface{}
	Close() error
}

// Options 推薦記憶設定
type Options struct {
	MaxSize         int           // 最多保留的 session 數（memory）
	TTL             time.Duration // 最後寫入後保留時間
	CleanupInterval time.Duration
	Limit           int // 每個 session 保留的菜名數
}

// New 依 cache.backend 建立 Store，backend 為 none 時回傳 nil
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	opts := Options{
		MaxSize:         cfg.MaxSize,
		TTL:             cfg.TTL,
		CleanupInterval: cfg.CleanupInterval,
		Limit:           cfg.RememberLimit,
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(opts), nil
	case "redis":
		store, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Options:  opts,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "none", "":
		common.LogInfo("推薦記憶已停用")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// generateKey 生成緩存鍵
func generateKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return "fridge:suggested:" + hex.EncodeToString(hash[:])
}

// newestFirst 反轉並截斷為 limit 筆，輸入為舊到新
func newestFirst(names []string, limit int) []string {
	out := make([]string, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, names[i])
	}
	return out
}

func logStoreReady(backend string, opts Options) {
	common.LogInfo("推薦記憶已初始化",
		zap.String("backend", backend),
		zap.Int("最大容量", opts.MaxSize),
		zap.Duration("存活時間", opts.TTL),
		zap.Int("每個 session 上限", opts.Limit),
	)
}
