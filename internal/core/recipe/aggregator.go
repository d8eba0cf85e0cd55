package recipe

import (
	"context"
	"errors"
	"sync"
	"time"

	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentDays 預設參考的晚餐歷史天數
const DefaultRecentDays = 14

// State 產生流程狀態
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Result 一次產生的結果
type Result struct {
	Recipes   []Recipe `json:"recipes"`
	Requested int      `json:"requested"`
	Attempts  int      `json:"attempts"`
	Partial   bool     `json:"partial"`
}

// Snapshot 對外可見的 Aggregator 狀態
type Snapshot struct {
	State      State     `json:"state"`
	Result     *Result   `json:"result,omitempty"`
	Err        error     `json:"-"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Memory 記住近期推薦過的菜名，供之後的 prompt 排除
type Memory interface {
	Recall(ctx context.Context, key string) ([]string, error)
	Remember(ctx context.Context, key string, names []string) error
}

// Aggregator 重複呼叫 Pipeline 直到湊滿指定數量的不重複食譜
type Aggregator struct {
	ingredients IngredientSource
	dinners     DinnerSource
	pipeline    Pipeline
	memory      Memory
	memoryKey   string
	recentDays  int
	metrics     *metrics.Metrics

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	snapshot Snapshot
}

// AggregatorOption 設定 Aggregator
type AggregatorOption func(*Aggregator)

// WithMemory 以 key 讀寫推薦記憶
func WithMemory(m Memory, key string) AggregatorOption {
	return func(a *Aggregator) {
		a.memory = m
		a.memoryKey = key
	}
}

// WithRecentDays 設定參考的晚餐歷史天數
func WithRecentDays(days int) AggregatorOption {
	return func(a *Aggregator) {
		if days > 0 {
			a.recentDays = days
		}
	}
}

// WithAggregatorMetrics 記錄產生結果
func WithAggregatorMetrics(m *metrics.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator 建立 Aggregator
func NewAggregator(ingredients IngredientSource, dinners DinnerSource, pipeline Pipeline, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		ingredients: ingredients,
		dinners:     dinners,
		pipeline:    pipeline,
		recentDays:  DefaultRecentDays,
		snapshot:    Snapshot{State: StateIdle},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshot 目前狀態
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Generate 執行一次產生。進行中的前一次產生會被取消並回傳 ErrSuperseded。
func (a *Aggregator) Generate(ctx context.Context, req SuggestionRequest) (*Result, error) {
	ctx, seq := a.begin(ctx)
	start := time.Now()

	res, attempts, err := a.generate(ctx, req)

	if !a.finish(seq, res, err) {
		a.metrics.ObserveGeneration(metrics.OutcomeSuperseded, attempts, time.Since(start))
		return nil, ErrSuperseded
	}
	a.metrics.ObserveGeneration(outcomeOf(res, err), attempts, time.Since(start))

	if err != nil {
		return nil, err
	}
	common.LogInfo("推薦產生完成",
		zap.Int("requested", res.Requested),
		zap.Int("returned", len(res.Recipes)),
		zap.Int("attempts", res.Attempts),
		zap.Duration("耗時", time.Since(start)),
	)
	return res, nil
}

// Cancel 取消進行中的產生
func (a *Aggregator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *Aggregator) begin(ctx context.Context) (context.Context, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	a.seq++
	ctx, a.cancel = context.WithCancel(ctx)
	a.snapshot = Snapshot{State: StateGenerating, StartedAt: time.Now()}
	return ctx, a.seq
}

// finish 只有最新一次產生能寫入狀態
func (a *Aggregator) finish(seq uint64, res *Result, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if seq != a.seq {
		return false
	}
	a.cancel()
	a.cancel = nil

	snap := Snapshot{StartedAt: a.snapshot.StartedAt, FinishedAt: time.Now()}
	if err != nil {
		snap.State = StateFailed
		snap.Err = err
	} else {
		snap.State = StateSucceeded
		snap.Result = res
	}
	a.snapshot = snap
	return true
}

func (a *Aggregator) generate(ctx context.Context, req SuggestionRequest) (*Result, int, error) {
	count := ClampCount(req.Count)

	ingredients, dinners, err := a.fetchFacts(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(ingredients) == 0 {
		return nil, 0, ErrNoIngredients
	}

	remembered := a.recall(ctx)

	result := make([]Recipe, 0, count)
	seen := make(map[string]struct{}, count)
	budget := 2 * count
	attempts := 0

	for !reachedTarget(len(result), count) && !attemptBudgetSpent(attempts, budget) {
		remaining := count - len(result)
		attempts++

		batch, err := a.pipeline.Suggest(ctx, PromptInput{
			Ingredients:   ingredients,
			RecentDinners: dinners,
			UserRequest:   req.UserRequest,
			Count:         remaining,
			Exclude:       append(dishNames(result), remembered...),
		})
		if err != nil {
			return nil, attempts, err
		}

		valid := ValidCandidates(batch)
		if batchExhausted(valid) {
			common.LogDebug("本批沒有有效食譜，停止重試", zap.Int("attempt", attempts))
			break
		}

		for _, r := range valid {
			if reachedTarget(len(result), count) {
				break
			}
			key := r.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, attempts, ErrSuggestionGeneration
	}

	a.remember(ctx, dishNames(result))

	return &Result{
		Recipes:   result,
		Requested: count,
		Attempts:  attempts,
		Partial:   len(result) < count,
	}, attempts, nil
}

// fetchFacts 同時讀取食材與最近晚餐
func (a *Aggregator) fetchFacts(ctx context.Context) ([]IngredientFact, []DinnerFact, error) {
	var (
		ingredients []IngredientFact
		dinners     []DinnerFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ingredients, err = a.ingredients.ListIngredients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dinners, err = a.dinners.ListDinnersSince(gctx, a.recentDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ingredients, dinners, nil
}

func (a *Aggregator) recall(ctx context.Context) []string {
	if a.memory == nil {
		return nil
	}
	names, err := a.memory.Recall(ctx, a.memoryKey)
	if err != nil {
		common.LogWarn("讀取推薦記憶失敗", zap.Error(err))
		return nil
	}
	return names
}

func (a *Aggregator) remember(ctx context.Context, names []string) {
	if a.memory == nil {
		return
	}
	if err := a.memory.Remember(ctx, a.memoryKey, names); err != nil {
		common.LogWarn("寫入推薦記憶失敗", zap.Error(err))
	}
}

func reachedTarget(collected, count int) bool {
	return collected >= count
}

func attemptBudgetSpent(attempts, budget int) bool {
	return attempts >= budget
}

func batchExhausted(valid []Recipe) bool {
	return len(valid) == 0
}

func dishNames(recipes []Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.DishName)
	}
	return out
}

func outcomeOf(res *Result, err error) string {
	switch {
	case err == nil && res.Partial:
		return metrics.OutcomePartial
	case err == nil:
		return metrics.OutcomeSucceeded
	case errors.Is(err, ErrNoIngredients):
		return metrics.OutcomeNoIngredients
	default:
		return metrics.OutcomeFailed
	}
}
