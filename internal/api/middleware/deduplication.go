package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"fridge-recipe/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KeyFunc 由請求體計算去重指紋，回傳空字串表示不去重
type KeyFunc func(body []byte) string

// BodyHash 以請求體 sha256 作為指紋
func BodyHash(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}

// requestCache 記錄指紋最後出現時間
type requestCache struct {
	mu        sync.Mutex
	requests  map[string]time.Time
	lastSweep time.Time
}

// seen 判斷指紋是否在 window 內出現過，未出現則記錄
func (rc *requestCache) seen(fingerprint string, now time.Time, window time.Duration) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	// 定期清掉過期指紋
	if now.Sub(rc.lastSweep) > 10*window {
		for k, t := range rc.requests {
			if now.Sub(t) > window {
				delete(rc.requests, k)
			}
		}
		rc.lastSweep = now
	}

	if last, ok := rc.requests[fingerprint]; ok && now.Sub(last) <= window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件，window 內相同指紋的 POST 回 429
func Deduplication(window time.Duration, key KeyFunc) gin.HandlerFunc {
	return deduplication(window, key, time.Now)
}

func deduplication(window time.Duration, key KeyFunc, now func() time.Time) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	if key == nil {
		key = BodyHash
	}
	cache := &requestCache{requests: make(map[string]time.Time)}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.LogError("Failed to read request body", zap.Error(err))
			c.Next()
			return
		}
		// 恢復請求體
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		k := key(body)
		if k == "" {
			c.Next()
			return
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + k
		if cache.seen(fingerprint, now(), window) {
			common.LogWarn("重複請求已拒絕",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			common.RespondError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
