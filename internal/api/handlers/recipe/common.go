package recipe

import (
	"context"
	"errors"
	"io"
	"strconv"

	"fridge-recipe/internal/core/ai/invoker"
	"fridge-recipe/internal/core/ai/queue"
	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/infrastructure/store"
	"fridge-recipe/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 將領域錯誤對應到 API 錯誤碼後回應
func respondError(c *gin.Context, err error) {
	var upstream *invoker.UpstreamModelError
	var malformed *recipe.MalformedSuggestionError

	// 隊列與逾時錯誤會被包在 UpstreamModelError 內，需先判斷
	switch {
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrClosed):
		common.RespondError(c, common.ErrServiceUnavailable.Wrap(err))
	case errors.Is(err, context.DeadlineExceeded):
		common.RespondError(c, common.ErrGatewayTimeout.Wrap(err))
	case errors.As(err, &upstream):
		// 上游錯誤訊息對使用者有意義，直接帶出
		common.LogError("AI 模型呼叫失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.String("model", upstream.Model),
			zap.Int("status", upstream.Status),
			zap.Error(err),
		)
		common.RespondErrorWithDetails(c, common.ErrUpstreamModel.Wrap(err), upstream.Detail)
	case errors.As(err, &malformed):
		common.LogError("模型回應無法解析",
			zap.String("request_id", requestid.Get(c)),
			zap.String("raw", common.Truncate(malformed.Raw, 500)),
			zap.Error(err),
		)
		common.RespondErrorWithDetails(c, common.ErrMalformedSuggestion.Wrap(err), "")
	case errors.Is(err, recipe.ErrNoIngredients):
		common.RespondError(c, common.ErrNoIngredients.Wrap(err))
	case errors.Is(err, recipe.ErrSuggestionGeneration):
		common.RespondError(c, common.ErrSuggestionFailed.Wrap(err))
	case errors.Is(err, recipe.ErrSuperseded):
		common.RespondError(c, common.ErrSuperseded.Wrap(err))
	case store.IsValidationError(err):
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
	case errors.Is(err, store.ErrNotFound):
		common.RespondError(c, common.ErrNotFound.Wrap(err))
	default:
		common.RespondError(c, err)
	}
}

// bindJSON 解析請求 body；空 body 回傳 io.EOF，尾端多餘資料視為錯誤
func bindJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	return common.DecodeJSON(c.Request.Body, v)
}

// badRequest 請求格式錯誤
func badRequest(c *gin.Context, err error) {
	common.LogWarn("請求格式無效",
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
}

// queryInt 讀取整數查詢參數，缺少或無法解析時回傳 def
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
