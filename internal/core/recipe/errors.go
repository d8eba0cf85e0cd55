package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIngredients 冷藏庫沒有任何食材，不呼叫上游
	ErrNoIngredients = errors.New("no ingredients in fridge")
	// ErrSuggestionGeneration 重試結束仍沒有任何有效且不重複的食譜
	ErrSuggestionGeneration = errors.New("no valid distinct recipe was produced")
	// ErrSuperseded 同一個 Aggregator 上有更新的產生請求
	ErrSuperseded = errors.New("generation superseded by a newer request")
	// ErrInvalidCandidate 候選食譜欄位不完整或型別錯誤
	ErrInvalidCandidate = errors.New("invalid recipe candidate")

	errEmptyText         = errors.New("empty model output")
	errNoJSON            = errors.New("no JSON value found in model output")
	errUnrecognizedShape = errors.New("unrecognized response shape")
)

// MalformedSuggestionError 模型輸出無法解析成食譜列表
type MalformedSuggestionError struct {
	Raw string
	Err error
}

func (e *MalformedSuggestionError) Error() string {
	return fmt.Sprintf("malformed suggestion: %v", e.Err)
}

func (e *MalformedSuggestionError) Unwrap() error {
	return e.Err
}
