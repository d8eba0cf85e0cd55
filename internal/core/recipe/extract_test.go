package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("whole text with padding", func(t *testing.T) {
		v, err := ExtractJSON(`  {"dish_name":"X"}  `)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"dish_name": "X"}, v)
	})

	t.Run("embedded object", func(t *testing.T) {
		v, err := ExtractJSON(`noise {"recipes":[]} trailing`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"recipes": []any{}}, v)
	})

	t.Run("code fence", func(t *testing.T) {
		v, err := ExtractJSON("```json\n[{\"dish_name\":\"Y\"}]\n```")
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"dish_name": "Y"}}, v)
	})

	t.Run("bare array", func(t *testing.T) {
		v, err := ExtractJSON(`[1, 2]`)
		require.NoError(t, err)
		assert.Len(t, v, 2)
	})

	for name, input := range map[string]string{
		"no json":        "no json here",
		"empty":          "",
		"whitespace":     "   \n\t",
		"broken braces":  "before { not json } after",
		"reversed brace": "} {",
		"scalar":         "42",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractJSON(input)
			var malformed *MalformedSuggestionError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, input, malformed.Raw)
		})
	}
}
