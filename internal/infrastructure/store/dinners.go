package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fridge-recipe/internal/core/recipe"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Dinner dinner_history 的一列
type Dinner struct {
	ID                 string    `db:"id" json:"id"`
	DishName           string    `db:"dish_name" json:"dish_name"`
	DinnerDate         string    `db:"dinner_date" json:"dinner_date"`
	Notes              *string   `db:"notes" json:"notes"`
	RecipeText         *string   `db:"recipe_text" json:"recipe_text"`
	CookingTimeMinutes *int      `db:"cooking_time_minutes" json:"cooking_time_minutes"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DinnerInput 新增 / 更新晚餐紀錄的輸入
type DinnerInput struct {
	DishName           string  `json:"dish_name"`
	DinnerDate         string  `json:"dinner_date"`
	Notes              *string `json:"notes"`
	RecipeText         *string `json:"recipe_text"`
	CookingTimeMinutes *int    `json:"cooking_time_minutes"`
}

// Normalize 去除空白並驗證
func (in DinnerInput) Normalize() (DinnerInput, error) {
	out := in
	out.DishName = strings.TrimSpace(in.DishName)
	out.DinnerDate = strings.TrimSpace(in.DinnerDate)
	out.Notes = trimOptional(in.Notes)

	if err := ValidateDishName(out.DishName); err != nil {
		return out, err
	}
	if out.DinnerDate == "" {
		return out, ErrInvalidDateFormat
	}
	if err := ValidateDate(out.DinnerDate); err != nil {
		return out, err
	}
	if out.CookingTimeMinutes != nil && *out.CookingTimeMinutes < 0 {
		return out, ErrInvalidCookingTime
	}
	return out, nil
}

const dinnerColumns = `id, dish_name, dinner_date, notes, recipe_text, cooking_time_minutes, created_at, updated_at`

// DinnerStore dinner_history 的 sqlx 實作
type DinnerStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDinnerStore(db *sqlx.DB) *DinnerStore {
	return &DinnerStore{db: db, now: time.Now}
}

func (s *DinnerStore) q(query string) string { return s.db.Rebind(query) }

// List 新到舊分頁列出
func (s *DinnerStore) List(ctx context.Context, limit, offset int) ([]*Dinner, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var items []*Dinner
	err := s.db.SelectContext(ctx, &items, s.q(
		`SELECT `+dinnerColumns+` FROM dinner_history ORDER BY dinner_date DESC, created_at DESC LIMIT ? OFFSET ?`),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list dinners: %w", err)
	}
	return items, nil
}

// ListSince 列出最近 days 天內（含當天）的紀錄，新到舊
func (s *DinnerStore) ListSince(ctx context.Context, days int) ([]*Dinner, error) {
	since := today(s.now()).AddDate(0, 0, -days)

	var items []*Dinner
	err := s.db.SelectContext(ctx, &items, s.q(
		`SELECT `+dinnerColumns+` FROM dinner_history WHERE dinner_date >= ? ORDER BY dinner_date DESC, created_at DESC`),
		formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("list recent dinners: %w", err)
	}
	return items, nil
}

// Get 取得單筆紀錄，不存在時回傳 ErrNotFound
func (s *DinnerStore) Get(ctx context.Context, id string) (*Dinner, error) {
	var item Dinner
	err := s.db.GetContext(ctx, &item, s.q(
		`SELECT `+dinnerColumns+` FROM dinner_history WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dinner: %w", err)
	}
	return &item, nil
}

// Create 新增紀錄
func (s *DinnerStore) Create(ctx context.Context, in DinnerInput) (*Dinner, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO dinner_history (`+dinnerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id, in.DishName, in.DinnerDate, in.Notes, in.RecipeText, in.CookingTimeMinutes, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert dinner: %w", err)
	}
	return s.Get(ctx, id)
}

// Update 以輸入覆寫整筆紀錄
func (s *DinnerStore) Update(ctx context.Context, id string, in DinnerInput) (*Dinner, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE dinner_history SET dish_name = ?, dinner_date = ?, notes = ?, recipe_text = ?, cooking_time_minutes = ?, updated_at = ? WHERE id = ?`),
		in.DishName, in.DinnerDate, in.Notes, in.RecipeText, in.CookingTimeMinutes, s.now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update dinner: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete 刪除紀錄
func (s *DinnerStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM dinner_history WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete dinner: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDinnersSince 提供推薦流程使用的晚餐事實
func (s *DinnerStore) ListDinnersSince(ctx context.Context, days int) ([]recipe.DinnerFact, error) {
	items, err := s.ListSince(ctx, days)
	if err != nil {
		return nil, err
	}
	facts := make([]recipe.DinnerFact, 0, len(items))
	for _, item := range items {
		d, err := parseDate(item.DinnerDate)
		if err != nil {
			continue
		}
		facts = append(facts, recipe.DinnerFact{DishName: item.DishName, Date: d})
	}
	return facts, nil
}

// AppendDinner 保存採用的推薦食譜
func (s *DinnerStore) AppendDinner(ctx context.Context, entry recipe.DinnerEntry) error {
	_, err := s.Create(ctx, DinnerInput{
		DishName:           entry.DishName,
		DinnerDate:         formatDate(entry.Date),
		Notes:              entry.Notes,
		RecipeText:         entry.RecipeText,
		CookingTimeMinutes: entry.CookingTimeMinutes,
	})
	return err
}
