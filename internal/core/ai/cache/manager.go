package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內的推薦記憶
type MemoryStore struct {
	opts  Options
	mu    sync.RWMutex
	store map[string]cacheEntry
	stats cacheStats
	done  chan struct{}
	once  sync.Once
	now   func() time.Time
}

// cacheEntry 緩存條目，names 由舊到新
type cacheEntry struct {
	names       []string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建新的記憶體緩存
func NewMemoryStore(opts Options) *MemoryStore {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 1000
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	m := &MemoryStore{
		opts:  opts,
		store: make(map[string]cacheEntry),
		done:  make(chan struct{}),
		now:   time.Now,
	}

	// 啟動清理過期緩存的協程
	if opts.CleanupInterval > 0 {
		go m.startCleanup(opts.CleanupInterval)
	}

	logStoreReady("memory", opts)
	return m
}

// Recall 取得 key 近期推薦過的菜名，新到舊
func (m *MemoryStore) Recall(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := generateKey(key)
	entry, exists := m.store[k]
	if !exists {
		m.stats.misses++
		return nil, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.store, k)
		m.stats.evictions++
		m.stats.misses++
		return nil, nil
	}

	entry.lastAccess = m.now()
	entry.accessCount++
	m.store[k] = entry
	m.stats.hits++

	return newestFirst(entry.names, m.opts.Limit), nil
}

// Remember 追加菜名，超過上限時丟棄最舊的
func (m *MemoryStore) Remember(_ context.Context, key string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := generateKey(key)
	now := m.now()
	entry, exists := m.store[k]
	if !exists || now.After(entry.expiresAt) {
		if len(m.store) >= m.opts.MaxSize {
			m.cleanup()
			if len(m.store) >= m.opts.MaxSize {
				m.evictLRU()
			}
		}
		entry = cacheEntry{createdAt: now}
	}

	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			entry.names = append(entry.names, n)
		}
	}
	if over := len(entry.names) - m.opts.Limit; over > 0 {
		entry.names = append([]string(nil), entry.names[over:]...)
	}
	entry.expiresAt = now.Add(m.opts.TTL)
	entry.lastAccess = now
	m.store[k] = entry

	return nil
}

// startCleanup 啟動清理過期緩存的協程
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		}
	}
}

// cleanup 清理過期的緩存，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰最少使用的項目，呼叫端需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	// 找到最少訪問的項目
	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("快取已淘汰(LRU)",
			zap.String("鍵", oldestKey),
		)
	}
}

// Stats 獲取緩存統計信息
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"backend":   "memory",
		"size":      len(m.store),
		"max_size":  m.opts.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 關閉緩存管理器
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
