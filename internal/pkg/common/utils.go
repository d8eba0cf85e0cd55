package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// IsValidUUID 檢查字串是否為合法 UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// RespondError 將錯誤轉換為 API 錯誤響應並中止請求
func RespondError(c *gin.Context, err error) {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		customErr = ErrInternalError.Wrap(err)
	}

	details := ""
	if customErr.Err != nil && customErr.Status < http.StatusInternalServerError {
		details = customErr.Err.Error()
	}

	if customErr.Status >= http.StatusInternalServerError {
		LogError("請求處理失敗",
			zap.String("code", customErr.Code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(customErr.Status, customErr.Response(details))
}

// RespondErrorWithDetails 以指定細節寫入錯誤響應
func RespondErrorWithDetails(c *gin.Context, customErr *CustomError, details string) {
	c.AbortWithStatusJSON(customErr.Status, customErr.Response(details))
}
