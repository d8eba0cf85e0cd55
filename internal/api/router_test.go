package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fridge-recipe/internal/core/ai/cache"
	"fridge-recipe/internal/core/ai/invoker"
	"fridge-recipe/internal/core/ai/provider"
	"fridge-recipe/internal/core/ai/queue"
	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/infrastructure/config"
	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/infrastructure/store"
	"fridge-recipe/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator 依序回傳預設的模型輸出
type stubGenerator struct {
	mu      sync.Mutex
	outputs []string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, req provider.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.outputs) == 0 {
		return `{"recipes":[]}`, nil
	}
	out := g.outputs[0]
	g.outputs = g.outputs[1:]
	return out, nil
}

func recipeJSON(names ...string) string {
	recipes := make([]map[string]any, 0, len(names))
	for _, n := range names {
		recipes = append(recipes, map[string]any{
			"dish_name":            n,
			"description":          "手軽な一品",
			"cooking_time_minutes": 20,
			"servings":             "2人前",
			"ingredients_needed":   []map[string]any{{"name": "鶏肉", "quantity": "300g", "from_fridge": true}},
			"steps":                []string{"切る", "焼く"},
			"tips":                 "強火で",
		})
	}
	b, _ := json.Marshal(map[string]any{"recipes": recipes})
	return "```json\n" + string(b) + "\n```"
}

type testServer struct {
	router *gin.Engine
	gen    *stubGenerator
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Version: "test"},
		Server: config.ServerConfig{
			RequestTimeout: 10 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Suggestion:  config.SuggestionConfig{DefaultCount: 3, RecentDays: 14, SessionTTL: time.Minute},
		DedupWindow: 5 * time.Second,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	ingredients := store.NewIngredientStore(db)
	dinners := store.NewDinnerStore(db)

	gen := &stubGenerator{}
	q := queue.NewManager(gen, 2, 10)
	t.Cleanup(q.Close)

	m := metrics.New(func() float64 { return float64(q.Len()) })
	memory := cache.NewMemoryStore(cache.Options{MaxSize: 10, TTL: time.Hour, Limit: 20})
	t.Cleanup(func() { _ = memory.Close() })

	inv := invoker.New(q, "model-a", nil, invoker.WithMetrics(m))
	svc := recipe.NewService(recipe.ServiceConfig{
		Ingredients: ingredients,
		Dinners:     dinners,
		History:     dinners,
		Pipeline:    recipe.NewPipeline(inv),
		Memory:      memory,
		Metrics:     m,
		RecentDays:  14,
	})

	router := SetupRouter(testConfig(), Dependencies{
		DB:          db,
		Ingredients: ingredients,
		Dinners:     dinners,
		Suggestions: svc,
		Queue:       q,
		Memory:      memory,
		Metrics:     m,
	})
	return &testServer{router: router, gen: gen}
}

func (s *testServer) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(v))
}

func TestIngredientRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"鶏肉","quantity":"300g","category":"肉類"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	decode(t, w, &created)
	id := created["id"].(string)
	assert.Equal(t, "鶏肉", created["name"])
	assert.Equal(t, store.ExpiryOK, created["expiry_status"])

	w = s.do(http.MethodGet, "/api/v1/ingredients/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/v1/ingredients/"+id, `{"name":"鶏もも肉","category":"肉類"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "鶏もも肉")

	w = s.do(http.MethodGet, "/api/v1/ingredients?category=肉類", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Ingredients []map[string]any `json:"ingredients"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Ingredients, 1)

	w = s.do(http.MethodGet, "/api/v1/ingredients/expiring?days=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Empty(t, list.Ingredients)

	w = s.do(http.MethodDelete, "/api/v1/ingredients/"+id, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/ingredients/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestIngredientRoutes_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"","category":"肉類"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")

	w = s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"x","expiry_date":"2026/01/01"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/ingredients", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDinnerRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/dinners", `{"dish_name":"カレー","dinner_date":"2026-03-01","cooking_time_minutes":40}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created store.Dinner
	decode(t, w, &created)

	w = s.do(http.MethodGet, "/api/v1/dinners?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Dinners []store.Dinner `json:"dinners"`
	}
	decode(t, w, &list)
	require.Len(t, list.Dinners, 1)
	assert.Equal(t, "カレー", list.Dinners[0].DishName)

	w = s.do(http.MethodPut, "/api/v1/dinners/"+created.ID, `{"dish_name":"カレー","dinner_date":"2026-03-02"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-03-02")

	w = s.do(http.MethodPost, "/api/v1/dinners", `{"dish_name":"カレー","dinner_date":"2026-02-30"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/dinners/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/dinners/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestionRoutes_NoIngredients(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/suggestions", `{"count":2}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_INGREDIENTS")
	assert.Empty(t, s.gen.prompts, "no upstream call without ingredients")
	assert.NotEmpty(t, w.Header().Get("X-Session-ID"))
}

func TestSuggestionRoutes_GenerateAndAccept(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"鶏肉","quantity":"300g","category":"肉類"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	s.gen.outputs = []string{recipeJSON("照り焼きチキン", "親子丼")}
	session := map[string]string{"X-Session-ID": "session-1"}

	w = s.do(http.MethodPost, "/api/v1/suggestions", `{"user_request":"さっぱり","count":2}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "session-1", w.Header().Get("X-Session-ID"))

	var res recipe.Result
	decode(t, w, &res)
	require.Len(t, res.Recipes, 2)
	assert.Equal(t, "照り焼きチキン", res.Recipes[0].DishName)
	assert.Equal(t, 2, res.Requested)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Partial)
	require.Len(t, s.gen.prompts, 1)
	assert.Contains(t, s.gen.prompts[0], "さっぱり")

	w = s.do(http.MethodGet, "/api/v1/suggestions/state", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]any
	decode(t, w, &state)
	assert.Equal(t, string(recipe.StateSucceeded), state["state"])
	assert.Equal(t, "session-1", state["session_id"])

	accept, err := json.Marshal(res.Recipes[0])
	require.NoError(t, err)
	w = s.do(http.MethodPost, "/api/v1/suggestions/accept", string(accept), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var accepted map[string]any
	decode(t, w, &accepted)
	assert.Equal(t, "照り焼きチキン", accepted["dish_name"])
	assert.Contains(t, accepted["recipe_text"], "【材料】")

	w = s.do(http.MethodPost, "/api/v1/suggestions/accept", string(accept), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = s.do(http.MethodGet, "/api/v1/dinners", "", nil)
	assert.Contains(t, w.Body.String(), "照り焼きチキン")

	// 同一 session 下一次推薦會排除已推薦過的菜名
	s.gen.outputs = []string{recipeJSON("鶏の唐揚げ")}
	w = s.do(http.MethodPost, "/api/v1/suggestions", `{"count":1}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, s.gen.prompts, 2)
	assert.Contains(t, s.gen.prompts[1], "親子丼")
}

func TestSuggestionRoutes_UpstreamError(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"卵","category":"卵"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	s.gen.err = &provider.Error{Status: http.StatusTooManyRequests, Detail: "rate limited by upstream"}

	w = s.do(http.MethodPost, "/api/v1/suggestions", `{"count":1}`, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "UPSTREAM_MODEL_ERROR", body["code"])
	assert.Equal(t, "rate limited by upstream", body["details"])
}

func TestSuggestionRoutes_MalformedOutput(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/ingredients", `{"name":"卵","category":"卵"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	s.gen.outputs = []string{"すみません、提案できません"}

	w = s.do(http.MethodPost, "/api/v1/suggestions", `{"count":1}`, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "MALFORMED_SUGGESTION")
	assert.NotContains(t, w.Body.String(), "すみません")
}

func TestSuggestionRoutes_StateUnknownSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/suggestions/state", "", map[string]string{"X-Session-ID": "fresh"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"idle"`)
}

func TestOperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queue"`)

	w = s.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fridge_upstream_queue_length")
}
