package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate(""))
	assert.NoError(t, ValidateDate("2024-02-29"))
	assert.ErrorIs(t, ValidateDate("2023-02-29"), ErrInvalidDate)
	assert.ErrorIs(t, ValidateDate("2024-2-1"), ErrInvalidDateFormat)
	assert.ErrorIs(t, ValidateDate("tomorrow"), ErrInvalidDateFormat)
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateDishName(strings.Repeat("料", 100)))
	assert.ErrorIs(t, ValidateDishName(strings.Repeat("料", 101)), ErrDishNameTooLong)
	assert.ErrorIs(t, ValidateDishName("\t"), ErrDishNameRequired)

	assert.NoError(t, ValidateIngredientName(strings.Repeat("菜", 50)))
	assert.ErrorIs(t, ValidateIngredientName(strings.Repeat("菜", 51)), ErrIngredientNameTooLong)

	assert.NoError(t, ValidateQuantity(strings.Repeat("g", 30)))
	assert.ErrorIs(t, ValidateQuantity(strings.Repeat("g", 31)), ErrQuantityTooLong)
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory("野菜"))
	assert.ErrorIs(t, ValidateCategory("vegetable"), ErrInvalidCategory)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ValidateDate("2023-02-29")))
	assert.False(t, IsValidationError(ErrNotFound))
	assert.False(t, IsValidationError(errors.New("boom")))
}
