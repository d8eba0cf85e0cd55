package common

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, DecodeJSON(strings.NewReader(`{"n":25}`), &v))
	assert.Equal(t, json.Number("25"), v["n"])

	assert.ErrorIs(t, DecodeJSON(strings.NewReader("  "), &v), io.EOF)
	assert.Error(t, DecodeJSON(strings.NewReader(`{"n":1}{"n":2}`), &v))

	var arr []int
	require.NoError(t, ParseJSON(`[1,2]`, &arr))
	assert.Error(t, ParseJSON(`[1,2] x`, &arr))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1} `))
}
