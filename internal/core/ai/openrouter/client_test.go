package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fridge-recipe/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))

		var body Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "vendor/model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)

		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	c := NewClient(provider.Config{APIKey: "or-key", BaseURL: srv.URL})
	out, err := c.Generate(context.Background(), provider.Request{
		Prompt: "p", System: "s", Model: "vendor/model", MaxTokens: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","code":429}}`))
	}))
	defer srv.Close()

	c := NewClient(provider.Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), provider.Request{Prompt: "p", Model: "m"})

	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Equal(t, "rate limited", perr.Detail)
	assert.False(t, perr.IsModelNotFound())
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(provider.Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), provider.Request{Prompt: "p", Model: "m"})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)
}
