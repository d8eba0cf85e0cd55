package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Request 表示發送到 AI 提供者的單次文字生成請求
type Request struct {
	Prompt    string
	System    string
	Model     string
	MaxTokens int
}

// TextGenerator 定義 AI 提供者介面
type TextGenerator interface {
	// Generate 以指定模型生成文字，非 2xx 響應回傳 *Error
	Generate(ctx context.Context, req Request) (string, error)
}

// Error 表示上游回傳的非 2xx 響應
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("provider returned status %d", e.Status)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Detail)
}

// IsModelNotFound 上游表示模型不存在
func (e *Error) IsModelNotFound() bool {
	return e.Status == http.StatusNotFound
}

// ErrEmptyResponse 上游回應成功但沒有任何文字內容
var ErrEmptyResponse = errors.New("provider returned empty content")

// Config 定義 AI 提供者配置
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// errorEnvelope 供應商共用的錯誤格式 {"error":{"message":...}}
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewError 由非 2xx 響應建立 *Error，盡量取出上游訊息
func NewError(status int, body []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{Status: status}
	}
	return &Error{Status: status, Detail: env.Error.Message}
}
