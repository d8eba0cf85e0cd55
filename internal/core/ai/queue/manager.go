package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"fridge-recipe/internal/core/ai/provider"
	"fridge-recipe/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 等待中的上游請求已達上限
	ErrQueueFull = errors.New("upstream request queue is full")
	// ErrClosed 隊列已關閉
	ErrClosed = errors.New("upstream request queue is closed")
)

// Request 隊列請求
type Request struct {
	Context context.Context
	Request provider.Request
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Text  string
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 以固定數量 worker 限制同時進行的上游請求，本身也是 TextGenerator
type Manager struct {
	next      provider.TextGenerator
	workers   int
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	mu        sync.RWMutex // 保護 done 關閉與入隊之間的順序
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(next provider.TextGenerator, workers, maxSize int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	m := &Manager{
		next:    next,
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("上游請求隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", maxSize),
	)
	return m
}

// Generate 排入隊列並等待結果；隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Generate(ctx context.Context, req provider.Request) (string, error) {
	queueReq := &Request{
		Context: ctx,
		Request: req,
		Result:  make(chan Result, 1),
	}

	if err := m.enqueue(queueReq); err != nil {
		return "", err
	}

	select {
	case res := <-queueReq.Result:
		return res.Text, res.Error
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) enqueue(req *Request) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return nil
	default:
		common.LogWarn("上游請求隊列已滿", zap.Int("max_queue_size", m.maxSize))
		return ErrQueueFull
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		// 關閉後不再取新請求，剩餘的由 Close 回覆
		select {
		case <-m.done:
			return
		default:
		}

		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(id, req)
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	defer atomic.AddInt64(&m.processed, 1)

	// 呼叫端已放棄時不再送出
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}

	text, err := m.next.Generate(req.Context, req.Request)
	if err != nil {
		common.LogDebug("worker 請求失敗", zap.Int("worker", id), zap.Error(err))
	}
	req.Result <- Result{Text: text, Error: err}
}

// Len 等待中的請求數
func (m *Manager) Len() int {
	return len(m.queue)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止 worker 並等待處理中的請求完成，仍在隊列中的請求以 ErrClosed 回覆
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		close(m.done)
		m.mu.Unlock()
		m.wg.Wait()

		dropped := 0
		for len(m.queue) > 0 {
			req := <-m.queue
			req.Result <- Result{Error: ErrClosed}
			dropped++
		}
		common.LogInfo("上游請求隊列已關閉",
			zap.Int64("processed", atomic.LoadInt64(&m.processed)),
			zap.Int("dropped", dropped),
		)
	})
}
