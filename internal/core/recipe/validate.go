package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ValidateCandidate 檢查必要欄位並轉換為 Recipe
func ValidateCandidate(c Candidate) (Recipe, error) {
	var r Recipe
	var err error

	if r.DishName, err = requiredText(c, "dish_name"); err != nil {
		return Recipe{}, err
	}
	if r.Description, err = requiredText(c, "description"); err != nil {
		return Recipe{}, err
	}
	if r.Servings, err = requiredText(c, "servings"); err != nil {
		return Recipe{}, err
	}
	if r.Tips, err = requiredText(c, "tips"); err != nil {
		return Recipe{}, err
	}

	minutes, ok := toInt(c["cooking_time_minutes"])
	if !ok {
		return Recipe{}, fmt.Errorf("%w: cooking_time_minutes must be a number", ErrInvalidCandidate)
	}
	r.CookingTimeMinutes = minutes

	ingredients, ok := c["ingredients_needed"].([]any)
	if !ok {
		return Recipe{}, fmt.Errorf("%w: ingredients_needed must be an array", ErrInvalidCandidate)
	}
	r.IngredientsNeeded = make([]RecipeIngredient, 0, len(ingredients))
	for _, item := range ingredients {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		fromFridge, _ := m["from_fridge"].(bool)
		r.IngredientsNeeded = append(r.IngredientsNeeded, RecipeIngredient{
			Name:       strings.TrimSpace(name),
			Quantity:   scalarText(m["quantity"]),
			FromFridge: fromFridge,
		})
	}

	steps, ok := c["steps"].([]any)
	if !ok {
		return Recipe{}, fmt.Errorf("%w: steps must be an array", ErrInvalidCandidate)
	}
	r.Steps = make([]string, 0, len(steps))
	for _, item := range steps {
		if s := scalarText(item); s != "" {
			r.Steps = append(r.Steps, s)
		}
	}

	return r, nil
}

// ValidCandidates 過濾出有效候選，保持順序
func ValidCandidates(batch []Candidate) []Recipe {
	out := make([]Recipe, 0, len(batch))
	for _, c := range batch {
		if r, err := ValidateCandidate(c); err == nil {
			out = append(out, r)
		}
	}
	return out
}

func requiredText(c Candidate, field string) (string, error) {
	s, ok := c[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s must be non-empty text", ErrInvalidCandidate, field)
	}
	return strings.TrimSpace(s), nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	case float64:
		return int(math.Round(n)), true
	case int:
		return n, true
	}
	return 0, false
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64, int, bool:
		return fmt.Sprint(t)
	}
	return ""
}
