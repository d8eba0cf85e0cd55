package recipe

// responseShape 模型回應的三種合法結構
type responseShape int

const (
	shapeUnknown  responseShape = iota
	shapeEnvelope               // {"recipes": [...]}
	shapeList                   // [...]
	shapeSingle                 // {"dish_name": ...}
)

// classify 判斷結構並回傳元素，只在這裡處理多型
func classify(v any) (responseShape, []any) {
	switch t := v.(type) {
	case map[string]any:
		if recipes, ok := t["recipes"]; ok {
			if items, ok := recipes.([]any); ok {
				return shapeEnvelope, items
			}
			return shapeUnknown, nil
		}
		if _, ok := t["dish_name"]; ok {
			return shapeSingle, []any{t}
		}
	case []any:
		return shapeList, t
	}
	return shapeUnknown, nil
}

// Normalize 將解析後的 JSON 統一為候選列表，不檢查欄位型別
func Normalize(v any) ([]Candidate, error) {
	shape, items := classify(v)
	if shape == shapeUnknown {
		return nil, &MalformedSuggestionError{Err: errUnrecognizedShape}
	}

	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			// 非物件元素保留為空候選，驗證時會被剔除
			out = append(out, Candidate{})
			continue
		}
		out = append(out, Candidate(m))
	}
	return out, nil
}
