package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RenderRecipeText 將食譜轉為保存到晚餐歷史的純文字
func RenderRecipeText(r Recipe) string {
	lines := []string{
		r.Description,
		"",
		fmt.Sprintf("調理時間: %d分 / %s", r.CookingTimeMinutes, r.Servings),
		"",
		"【材料】",
	}
	for _, ing := range r.IngredientsNeeded {
		line := fmt.Sprintf("- %s: %s", ing.Name, ing.Quantity)
		if !ing.FromFridge {
			line += "（要購入）"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", "【手順】")
	for i, step := range r.Steps {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	lines = append(lines, "", "💡 "+r.Tips)
	return strings.Join(lines, "\n")
}

// NewDinnerEntry 由採用的食譜建立晚餐紀錄，日期取 now 的當天
func NewDinnerEntry(r Recipe, now time.Time) DinnerEntry {
	text := RenderRecipeText(r)
	minutes := r.CookingTimeMinutes
	y, m, d := now.Date()
	return DinnerEntry{
		DishName:           strings.TrimSpace(r.DishName),
		Date:               time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		RecipeText:         &text,
		CookingTimeMinutes: &minutes,
	}
}

// Accept 將使用者採用的食譜寫入歷史
func Accept(ctx context.Context, sink HistorySink, r Recipe, now time.Time) (DinnerEntry, error) {
	entry := NewDinnerEntry(r, now)
	if err := sink.AppendDinner(ctx, entry); err != nil {
		return DinnerEntry{}, fmt.Errorf("append dinner: %w", err)
	}
	return entry, nil
}
