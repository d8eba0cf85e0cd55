package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"fridge-recipe/internal/core/ai/queue"
	"fridge-recipe/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Memory    map[string]interface{} `json:"suggestion_memory,omitempty"`
	Sessions  int                    `json:"sessions"`
}

// Pinger 資料庫連線檢查
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options 健康檢查依賴，未設定的欄位不會出現在回應中
type Options struct {
	Version  string
	DB       Pinger
	Queue    func() *queue.Status
	Memory   func() map[string]interface{}
	Sessions func() int
}

// Handler 健康檢查處理器
type Handler struct {
	opts Options
}

// NewHandler 創建健康檢查處理器
func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts}
}

// HealthCheck GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.opts.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.opts.Queue != nil {
		response.Queue = h.opts.Queue()
	}
	if h.opts.Memory != nil {
		response.Memory = h.opts.Memory()
	}
	if h.opts.Sessions != nil {
		response.Sessions = h.opts.Sessions()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck GET /ready，資料庫無法連線時回 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.DB.PingContext(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"database": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck GET /live
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
