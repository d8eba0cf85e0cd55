package recipe

import (
	"net/http"
	"time"

	"fridge-recipe/internal/infrastructure/store"

	"github.com/gin-gonic/gin"
)

// IngredientView 食材回應，附帶期限狀態
type IngredientView struct {
	*store.Ingredient
	ExpiryStatus string `json:"expiry_status"`
}

// IngredientHandler 冷藏庫食材 CRUD
type IngredientHandler struct {
	store *store.IngredientStore
	now   func() time.Time
}

// NewIngredientHandler 創建食材處理程序
func NewIngredientHandler(s *store.IngredientStore) *IngredientHandler {
	return &IngredientHandler{store: s, now: time.Now}
}

func (h *IngredientHandler) view(item *store.Ingredient) IngredientView {
	return IngredientView{Ingredient: item, ExpiryStatus: store.ExpiryStatus(item.ExpiryDate, h.now())}
}

func (h *IngredientHandler) views(items []*store.Ingredient) []IngredientView {
	out := make([]IngredientView, 0, len(items))
	for _, item := range items {
		out = append(out, h.view(item))
	}
	return out
}

// List GET /ingredients，可用 ?category= 篩選
func (h *IngredientHandler) List(c *gin.Context) {
	var (
		items []*store.Ingredient
		err   error
	)
	if category := c.Query("category"); category != "" {
		items, err = h.store.ListByCategory(c.Request.Context(), category)
	} else {
		items, err = h.store.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": h.views(items)})
}

// Expiring GET /ingredients/expiring?days=3
func (h *IngredientHandler) Expiring(c *gin.Context) {
	days := queryInt(c, "days", store.ExpiringSoonDays)
	if days < 0 {
		days = store.ExpiringSoonDays
	}
	items, err := h.store.ListExpiringSoon(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": h.views(items), "days": days})
}

// Get GET /ingredients/:id
func (h *IngredientHandler) Get(c *gin.Context) {
	item, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(item))
}

// Create POST /ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	var in store.IngredientInput
	if err := bindJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(item))
}

// Update PUT /ingredients/:id
func (h *IngredientHandler) Update(c *gin.Context) {
	var in store.IngredientInput
	if err := bindJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.store.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(item))
}

// Delete DELETE /ingredients/:id
func (h *IngredientHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
