package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe() Recipe {
	return Recipe{
		DishName:           "親子丼",
		Description:        "ふわとろ卵の定番丼",
		CookingTimeMinutes: 20,
		Servings:           "2人前",
		IngredientsNeeded: []RecipeIngredient{
			{Name: "鶏肉", Quantity: "200g", FromFridge: true},
			{Name: "三つ葉", Quantity: "少々", FromFridge: false},
		},
		Steps: []string{"鶏肉を切る", "煮る", "卵でとじる"},
		Tips:  "卵は半熟で火を止める",
	}
}

func TestRenderRecipeText(t *testing.T) {
	want := "ふわとろ卵の定番丼\n" +
		"\n" +
		"調理時間: 20分 / 2人前\n" +
		"\n" +
		"【材料】\n" +
		"- 鶏肉: 200g\n" +
		"- 三つ葉: 少々（要購入）\n" +
		"\n" +
		"【手順】\n" +
		"1. 鶏肉を切る\n" +
		"2. 煮る\n" +
		"3. 卵でとじる\n" +
		"\n" +
		"💡 卵は半熟で火を止める"
	assert.Equal(t, want, RenderRecipeText(sampleRecipe()))
}

type recordingSink struct {
	entries []DinnerEntry
	err     error
}

func (s *recordingSink) AppendDinner(_ context.Context, e DinnerEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func TestAccept(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2026, 10, 19, 21, 30, 0, 0, time.Local)

	entry, err := Accept(context.Background(), sink, sampleRecipe(), now)
	require.NoError(t, err)
	require.Len(t, sink.entries, 1)

	assert.Equal(t, "親子丼", entry.DishName)
	assert.Equal(t, "2026-10-19", entry.Date.Format("2006-01-02"))
	require.NotNil(t, entry.CookingTimeMinutes)
	assert.Equal(t, 20, *entry.CookingTimeMinutes)
	require.NotNil(t, entry.RecipeText)
	assert.Contains(t, *entry.RecipeText, "【手順】")
	assert.Equal(t, entry, sink.entries[0])
}

func TestAccept_SinkErrorPropagates(t *testing.T) {
	boom := errors.New("insert failed")
	_, err := Accept(context.Background(), &recordingSink{err: boom}, sampleRecipe(), time.Now())
	assert.ErrorIs(t, err, boom)
}
