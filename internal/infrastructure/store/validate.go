package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"fridge-recipe/internal/core/recipe"
)

const (
	maxDishNameLen       = 100
	maxIngredientNameLen = 50
	maxQuantityLen       = 30
)

var (
	// ErrDishNameRequired 料理名為空
	ErrDishNameRequired = errors.New("料理名を入力してください")
	// ErrDishNameTooLong 料理名超過 100 字
	ErrDishNameTooLong = errors.New("料理名は100文字以内で入力してください")
	// ErrIngredientNameRequired 材料名為空
	ErrIngredientNameRequired = errors.New("材料名を入力してください")
	// ErrIngredientNameTooLong 材料名超過 50 字
	ErrIngredientNameTooLong = errors.New("材料名は50文字以内で入力してください")
	// ErrQuantityTooLong 數量超過 30 字
	ErrQuantityTooLong = errors.New("数量は30文字以内で入力してください")
	// ErrInvalidDateFormat 日期不是 YYYY-MM-DD
	ErrInvalidDateFormat = errors.New("日付の形式が正しくありません")
	// ErrInvalidDate 日期格式正確但不存在（例如 2026-02-30）
	ErrInvalidDate = errors.New("無効な日付です")
	// ErrInvalidCategory 不在固定分類內
	ErrInvalidCategory = errors.New("カテゴリが正しくありません")
	// ErrInvalidCookingTime 調理時間為負數
	ErrInvalidCookingTime = errors.New("調理時間は0分以上で入力してください")

	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsValidationError 是否為輸入驗證錯誤
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrDishNameRequired, ErrDishNameTooLong, ErrIngredientNameRequired, ErrIngredientNameTooLong,
		ErrQuantityTooLong, ErrInvalidDateFormat, ErrInvalidDate, ErrInvalidCategory, ErrInvalidCookingTime,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidateDishName 檢查料理名（1..100 字）
func ValidateDishName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrDishNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxDishNameLen {
		return ErrDishNameTooLong
	}
	return nil
}

// ValidateIngredientName 檢查材料名（1..50 字）
func ValidateIngredientName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrIngredientNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxIngredientNameLen {
		return ErrIngredientNameTooLong
	}
	return nil
}

// ValidateQuantity 檢查數量（最多 30 字）
func ValidateQuantity(quantity string) error {
	if utf8.RuneCountInString(quantity) > maxQuantityLen {
		return ErrQuantityTooLong
	}
	return nil
}

// ValidateDate 檢查 YYYY-MM-DD，空字串視為未設定
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if !dateRe.MatchString(s) {
		return ErrInvalidDateFormat
	}
	if _, err := parseDate(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return nil
}

// ValidateCategory 檢查分類
func ValidateCategory(c string) error {
	if !recipe.Category(c).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	return nil
}
