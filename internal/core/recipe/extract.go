package recipe

import (
	"strings"

	"fridge-recipe/internal/pkg/common"
)

// ExtractJSON 從模型輸出取出 JSON 值。先嘗試整段解析，失敗時取第一個 { 到最後一個 } 之間的內容。
func ExtractJSON(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &MalformedSuggestionError{Raw: raw, Err: errEmptyText}
	}

	if v, err := parseStructured(common.StripCodeFence(text)); err == nil {
		return v, nil
	}

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, &MalformedSuggestionError{Raw: raw, Err: errNoJSON}
	}

	v, err := parseStructured(text[start : end+1])
	if err != nil {
		return nil, &MalformedSuggestionError{Raw: raw, Err: err}
	}
	return v, nil
}

// parseStructured 只接受物件或陣列
func parseStructured(s string) (any, error) {
	var v any
	if err := common.ParseJSON(s, &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, errNoJSON
	}
}
