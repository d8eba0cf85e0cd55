package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate(name string) Candidate {
	return Candidate{
		"dish_name":            name,
		"description":          "簡単な一品",
		"cooking_time_minutes": json.Number("20"),
		"servings":             "2人前",
		"ingredients_needed": []any{
			map[string]any{"name": "鶏肉", "quantity": "300g", "from_fridge": true},
			map[string]any{"name": "ねぎ", "quantity": json.Number("1"), "from_fridge": false},
		},
		"steps": []any{"切る", "焼く"},
		"tips":  "強火で",
	}
}

func TestValidateCandidate_Valid(t *testing.T) {
	r, err := ValidateCandidate(validCandidate(" 照り焼き "))
	require.NoError(t, err)

	assert.Equal(t, "照り焼き", r.DishName)
	assert.Equal(t, 20, r.CookingTimeMinutes)
	assert.Equal(t, []RecipeIngredient{
		{Name: "鶏肉", Quantity: "300g", FromFridge: true},
		{Name: "ねぎ", Quantity: "1", FromFridge: false},
	}, r.IngredientsNeeded)
	assert.Equal(t, []string{"切る", "焼く"}, r.Steps)
}

func TestValidateCandidate_EmptyListsAllowed(t *testing.T) {
	c := validCandidate("X")
	c["ingredients_needed"] = []any{}
	c["steps"] = []any{}
	r, err := ValidateCandidate(c)
	require.NoError(t, err)
	assert.Empty(t, r.IngredientsNeeded)
	assert.Empty(t, r.Steps)
}

func TestValidateCandidate_FractionalMinutes(t *testing.T) {
	c := validCandidate("X")
	c["cooking_time_minutes"] = json.Number("14.6")
	r, err := ValidateCandidate(c)
	require.NoError(t, err)
	assert.Equal(t, 15, r.CookingTimeMinutes)
}

func TestValidateCandidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Candidate)
	}{
		{"missing dish_name", func(c Candidate) { delete(c, "dish_name") }},
		{"blank description", func(c Candidate) { c["description"] = "   " }},
		{"numeric servings", func(c Candidate) { c["servings"] = json.Number("2") }},
		{"missing tips", func(c Candidate) { delete(c, "tips") }},
		{"string cooking time", func(c Candidate) { c["cooking_time_minutes"] = "30分" }},
		{"missing cooking time", func(c Candidate) { delete(c, "cooking_time_minutes") }},
		{"ingredients not a list", func(c Candidate) { c["ingredients_needed"] = "鶏肉" }},
		{"missing steps", func(c Candidate) { delete(c, "steps") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate("X")
			tt.mutate(c)
			_, err := ValidateCandidate(c)
			assert.ErrorIs(t, err, ErrInvalidCandidate)
		})
	}

	_, err := ValidateCandidate(Candidate{})
	assert.ErrorIs(t, err, ErrInvalidCandidate)
}

func TestValidCandidates_KeepsOrder(t *testing.T) {
	got := ValidCandidates([]Candidate{validCandidate("A"), {}, validCandidate("B")})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].DishName)
	assert.Equal(t, "B", got[1].DishName)
}

func TestNormalizedKey(t *testing.T) {
	assert.Equal(t, NormalizedKey("Curry"), NormalizedKey("  curry "))
	assert.Equal(t, NormalizedKey("カレー"), NormalizedKey("カレー　"))
	assert.NotEqual(t, NormalizedKey("カレー"), NormalizedKey("カレーうどん"))
}
