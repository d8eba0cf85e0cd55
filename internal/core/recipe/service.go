package recipe

import (
	"context"
	"sync"
	"time"

	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

// ServiceConfig 推薦服務設定
type ServiceConfig struct {
	Ingredients IngredientSource
	Dinners     DinnerSource
	History     HistorySink
	Pipeline    Pipeline
	Memory      Memory // 可為 nil
	Metrics     *metrics.Metrics
	RecentDays  int
	SessionTTL  time.Duration
}

type session struct {
	aggregator *Aggregator
	lastUsed   time.Time
}

// Service 依 session 管理 Aggregator
type Service struct {
	cfg ServiceConfig

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewService 創建推薦服務
func NewService(cfg ServiceConfig) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	return &Service{
		cfg:      cfg,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Aggregator 取得（或建立）session 專屬的 Aggregator
func (s *Service) Aggregator(sessionID string) *Aggregator {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		opts := []AggregatorOption{
			WithRecentDays(s.cfg.RecentDays),
			WithAggregatorMetrics(s.cfg.Metrics),
		}
		if s.cfg.Memory != nil {
			opts = append(opts, WithMemory(s.cfg.Memory, sessionID))
		}
		sess = &session{aggregator: NewAggregator(s.cfg.Ingredients, s.cfg.Dinners, s.cfg.Pipeline, opts...)}
		s.sessions[sessionID] = sess
	}
	sess.lastUsed = s.now()
	return sess.aggregator
}

// Generate 在指定 session 上產生推薦
func (s *Service) Generate(ctx context.Context, sessionID string, req SuggestionRequest) (*Result, error) {
	return s.Aggregator(sessionID).Generate(ctx, req)
}

// Snapshot 取得 session 狀態，未知 session 視為 idle
func (s *Service) Snapshot(sessionID string) Snapshot {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return Snapshot{State: StateIdle}
	}
	return sess.aggregator.Snapshot()
}

// Accept 保存採用的食譜
func (s *Service) Accept(ctx context.Context, r Recipe) (DinnerEntry, error) {
	return Accept(ctx, s.cfg.History, r, s.now())
}

// SessionCount 目前保留的 session 數
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict 移除閒置超過 TTL 的 session，回傳移除數量
func (s *Service) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.SessionTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) && sess.aggregator.Snapshot().State != StateGenerating {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup 定期清理閒置 session，ctx 結束時停止
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Evict(); n > 0 {
					common.LogDebug("清理閒置推薦 session", zap.Int("removed", n))
				}
			}
		}
	}()
}
