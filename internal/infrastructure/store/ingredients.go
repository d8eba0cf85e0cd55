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

// Ingredient fridge_ingredients 的一列
type Ingredient struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Quantity   *string   `db:"quantity" json:"quantity"`
	Category   string    `db:"category" json:"category"`
	ExpiryDate *string   `db:"expiry_date" json:"expiry_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IngredientInput 新增 / 更新食材的輸入
type IngredientInput struct {
	Name       string  `json:"name"`
	Quantity   *string `json:"quantity"`
	Category   string  `json:"category"`
	ExpiryDate *string `json:"expiry_date"`
}

// Normalize 去除空白、套用預設分類並驗證
func (in IngredientInput) Normalize() (IngredientInput, error) {
	out := IngredientInput{
		Name:       strings.TrimSpace(in.Name),
		Quantity:   trimOptional(in.Quantity),
		Category:   strings.TrimSpace(in.Category),
		ExpiryDate: trimOptional(in.ExpiryDate),
	}
	if out.Category == "" {
		out.Category = string(recipe.CategoryOther)
	}

	if err := ValidateIngredientName(out.Name); err != nil {
		return out, err
	}
	if out.Quantity != nil {
		if err := ValidateQuantity(*out.Quantity); err != nil {
			return out, err
		}
	}
	if err := ValidateCategory(out.Category); err != nil {
		return out, err
	}
	if out.ExpiryDate != nil {
		if err := ValidateDate(*out.ExpiryDate); err != nil {
			return out, err
		}
	}
	return out, nil
}

const ingredientColumns = `id, name, quantity, category, expiry_date, created_at, updated_at`

// IngredientStore fridge_ingredients 的 sqlx 實作
type IngredientStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewIngredientStore(db *sqlx.DB) *IngredientStore {
	return &IngredientStore{db: db, now: time.Now}
}

func (s *IngredientStore) q(query string) string { return s.db.Rebind(query) }

// List 依分類、名稱排序列出所有食材
func (s *IngredientStore) List(ctx context.Context) ([]*Ingredient, error) {
	var items []*Ingredient
	err := s.db.SelectContext(ctx, &items,
		`SELECT `+ingredientColumns+` FROM fridge_ingredients ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return items, nil
}

// ListByCategory 列出指定分類的食材
func (s *IngredientStore) ListByCategory(ctx context.Context, category string) ([]*Ingredient, error) {
	if err := ValidateCategory(category); err != nil {
		return nil, err
	}
	var items []*Ingredient
	err := s.db.SelectContext(ctx, &items, s.q(
		`SELECT `+ingredientColumns+` FROM fridge_ingredients WHERE category = ? ORDER BY name`), category)
	if err != nil {
		return nil, fmt.Errorf("list ingredients by category: %w", err)
	}
	return items, nil
}

// ListExpiringSoon 列出今天到 days 天後到期的食材，依到期日排序
func (s *IngredientStore) ListExpiringSoon(ctx context.Context, days int) ([]*Ingredient, error) {
	start := today(s.now())
	until := start.AddDate(0, 0, days)

	var items []*Ingredient
	err := s.db.SelectContext(ctx, &items, s.q(
		`SELECT `+ingredientColumns+` FROM fridge_ingredients
		 WHERE expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?
		 ORDER BY expiry_date, name`), formatDate(start), formatDate(until))
	if err != nil {
		return nil, fmt.Errorf("list expiring ingredients: %w", err)
	}
	return items, nil
}

// Get 取得單筆食材，不存在時回傳 ErrNotFound
func (s *IngredientStore) Get(ctx context.Context, id string) (*Ingredient, error) {
	var item Ingredient
	err := s.db.GetContext(ctx, &item, s.q(
		`SELECT `+ingredientColumns+` FROM fridge_ingredients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &item, nil
}

// Create 新增食材
func (s *IngredientStore) Create(ctx context.Context, in IngredientInput) (*Ingredient, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO fridge_ingredients (`+ingredientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		id, in.Name, in.Quantity, in.Category, in.ExpiryDate, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert ingredient: %w", err)
	}
	return s.Get(ctx, id)
}

// Update 以輸入覆寫整筆食材
func (s *IngredientStore) Update(ctx context.Context, id string, in IngredientInput) (*Ingredient, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE fridge_ingredients SET name = ?, quantity = ?, category = ?, expiry_date = ?, updated_at = ? WHERE id = ?`),
		in.Name, in.Quantity, in.Category, in.ExpiryDate, s.now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update ingredient: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete 刪除食材
func (s *IngredientStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM fridge_ingredients WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListIngredients 提供推薦流程使用的食材事實
func (s *IngredientStore) ListIngredients(ctx context.Context) ([]recipe.IngredientFact, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	facts := make([]recipe.IngredientFact, 0, len(items))
	for _, item := range items {
		fact := recipe.IngredientFact{
			Name:     item.Name,
			Quantity: item.Quantity,
			Category: recipe.Category(item.Category),
		}
		if item.ExpiryDate != nil {
			if d, err := parseDate(*item.ExpiryDate); err == nil {
				fact.ExpiryDate = &d
			}
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
