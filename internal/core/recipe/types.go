package recipe

import (
	"context"
	"strings"
	"time"
)

// 推薦數量上下限
const (
	MinCount = 1
	MaxCount = 5
)

// Category 食材分類
type Category string

// 固定的食材分類
const (
	CategoryMeat      Category = "肉類"
	CategorySeafood   Category = "魚介類"
	CategoryVegetable Category = "野菜"
	CategoryFruit     Category = "果物"
	CategoryDairy     Category = "乳製品"
	CategoryEgg       Category = "卵"
	CategorySeasoning Category = "調味料"
	CategoryGrain     Category = "穀物・麺類"
	CategoryTofu      Category = "豆腐・大豆製品"
	CategoryFrozen    Category = "冷凍食品"
	CategoryOther     Category = "その他"
)

// Categories 依顯示順序列出所有分類
var Categories = []Category{
	CategoryMeat, CategorySeafood, CategoryVegetable, CategoryFruit, CategoryDairy, CategoryEgg,
	CategorySeasoning, CategoryGrain, CategoryTofu, CategoryFrozen, CategoryOther,
}

// Valid 是否為已知分類
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IngredientFact 冷藏庫中的一項食材
type IngredientFact struct {
	Name       string
	Quantity   *string
	Category   Category
	ExpiryDate *time.Time
}

// DinnerFact 一筆晚餐紀錄
type DinnerFact struct {
	DishName string
	Date     time.Time
}

// DinnerEntry 寫入晚餐歷史的資料
type DinnerEntry struct {
	DishName           string
	Date               time.Time
	Notes              *string
	RecipeText         *string
	CookingTimeMinutes *int
}

// SuggestionRequest 推薦請求
type SuggestionRequest struct {
	UserRequest string `json:"user_request"`
	Count       int    `json:"count"`
}

// RecipeIngredient 食譜所需食材
type RecipeIngredient struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	FromFridge bool   `json:"from_fridge"`
}

// Recipe 一道推薦食譜
type Recipe struct {
	DishName           string             `json:"dish_name"`
	Description        string             `json:"description"`
	CookingTimeMinutes int                `json:"cooking_time_minutes"`
	Servings           string             `json:"servings"`
	IngredientsNeeded  []RecipeIngredient `json:"ingredients_needed"`
	Steps              []string           `json:"steps"`
	Tips               string             `json:"tips"`
}

// Key 去重用的正規化菜名
func (r Recipe) Key() string {
	return NormalizedKey(r.DishName)
}

// Candidate 模型回傳的單筆原始食譜，尚未驗證
type Candidate map[string]any

// ClampCount 將數量限制在 [MinCount, MaxCount]
func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// NormalizedKey 大小寫與前後空白不敏感的菜名
func NormalizedKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IngredientSource 提供冷藏庫現有食材
type IngredientSource interface {
	ListIngredients(ctx context.Context) ([]IngredientFact, error)
}

// DinnerSource 提供最近的晚餐紀錄
type DinnerSource interface {
	ListDinnersSince(ctx context.Context, days int) ([]DinnerFact, error)
}

// HistorySink 保存使用者採用的食譜
type HistorySink interface {
	AppendDinner(ctx context.Context, entry DinnerEntry) error
}
