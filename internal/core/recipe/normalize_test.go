package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	one := map[string]any{"dish_name": "A"}
	two := map[string]any{"dish_name": "B"}

	tests := []struct {
		name string
		in   any
		want []Candidate
	}{
		{"envelope", map[string]any{"recipes": []any{one}}, []Candidate{one}},
		{"empty envelope", map[string]any{"recipes": []any{}}, []Candidate{}},
		{"bare array", []any{one, two}, []Candidate{one, two}},
		{"single object", one, []Candidate{one}},
		{"non-object element", []any{"oops", one}, []Candidate{{}, one}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Unrecognized(t *testing.T) {
	for name, in := range map[string]any{
		"unknown object":     map[string]any{"foo": 1},
		"recipes not a list": map[string]any{"recipes": "nope"},
		"scalar":             "text",
		"nil":                nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(in)
			var malformed *MalformedSuggestionError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}
