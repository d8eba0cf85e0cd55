package recipe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader 選擇推薦 session 的標頭，缺少時由伺服器產生並回傳
const SessionHeader = "X-Session-ID"

// SuggestionService 推薦服務
type SuggestionService interface {
	Generate(ctx context.Context, sessionID string, req recipe.SuggestionRequest) (*recipe.Result, error)
	Snapshot(sessionID string) recipe.Snapshot
	Accept(ctx context.Context, r recipe.Recipe) (recipe.DinnerEntry, error)
}

// SuggestionHandler 推薦相關路由
type SuggestionHandler struct {
	svc          SuggestionService
	defaultCount int
}

// NewSuggestionHandler 創建推薦處理程序
func NewSuggestionHandler(svc SuggestionService, defaultCount int) *SuggestionHandler {
	return &SuggestionHandler{svc: svc, defaultCount: recipe.ClampCount(defaultCount)}
}

// SnapshotView 推薦狀態回應
type SnapshotView struct {
	recipe.Snapshot
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// AcceptResponse 採用食譜後寫入的晚餐紀錄
type AcceptResponse struct {
	DishName           string `json:"dish_name"`
	DinnerDate         string `json:"dinner_date"`
	RecipeText         string `json:"recipe_text"`
	CookingTimeMinutes int    `json:"cooking_time_minutes"`
}

func sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if id == "" {
		id = common.GenerateUUID()
	}
	c.Header(SessionHeader, id)
	return id
}

// Suggest POST /suggestions
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	id := sessionID(c)

	var req recipe.SuggestionRequest
	// 空 body 使用預設值
	if err := bindJSON(c, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	req.UserRequest = strings.TrimSpace(req.UserRequest)
	if req.Count == 0 {
		req.Count = h.defaultCount
	}

	common.LogInfo("開始產生推薦",
		zap.String("request_id", requestid.Get(c)),
		zap.String("session_id", id),
		zap.Int("count", req.Count),
		zap.Bool("has_user_request", req.UserRequest != ""),
	)

	res, err := h.svc.Generate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// State GET /suggestions/state
func (h *SuggestionHandler) State(c *gin.Context) {
	id := sessionID(c)
	snap := h.svc.Snapshot(id)

	view := SnapshotView{Snapshot: snap, SessionID: id}
	if snap.Err != nil {
		view.Error = snap.Err.Error()
	}
	c.JSON(http.StatusOK, view)
}

// Accept POST /suggestions/accept
func (h *SuggestionHandler) Accept(c *gin.Context) {
	var r recipe.Recipe
	if err := bindJSON(c, &r); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.svc.Accept(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("已採用推薦食譜",
		zap.String("request_id", requestid.Get(c)),
		zap.String("dish_name", entry.DishName),
	)

	resp := AcceptResponse{
		DishName:   entry.DishName,
		DinnerDate: entry.Date.Format("2006-01-02"),
	}
	if entry.RecipeText != nil {
		resp.RecipeText = *entry.RecipeText
	}
	if entry.CookingTimeMinutes != nil {
		resp.CookingTimeMinutes = *entry.CookingTimeMinutes
	}
	c.JSON(http.StatusCreated, resp)
}

// AcceptDedupKey 以正規化菜名作為採用請求的去重指紋
func AcceptDedupKey(body []byte) string {
	var r struct {
		DishName string `json:"dish_name"`
	}
	if err := common.ParseJSONBytes(body, &r); err != nil {
		return ""
	}
	return recipe.NormalizedKey(r.DishName)
}
