package recipe

import (
	"net/http"

	"fridge-recipe/internal/infrastructure/store"

	"github.com/gin-gonic/gin"
)

const (
	defaultDinnerLimit = 50
	maxDinnerLimit     = 200
)

// DinnerHandler 晚餐紀錄 CRUD
type DinnerHandler struct {
	store *store.DinnerStore
}

// NewDinnerHandler 創建晚餐紀錄處理程序
func NewDinnerHandler(s *store.DinnerStore) *DinnerHandler {
	return &DinnerHandler{store: s}
}

// List GET /dinners?limit=&offset=
func (h *DinnerHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", defaultDinnerLimit)
	if limit <= 0 || limit > maxDinnerLimit {
		limit = defaultDinnerLimit
	}
	offset := max(queryInt(c, "offset", 0), 0)

	items, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []*store.Dinner{}
	}
	c.JSON(http.StatusOK, gin.H{"dinners": items, "limit": limit, "offset": offset})
}

// Get GET /dinners/:id
func (h *DinnerHandler) Get(c *gin.Context) {
	item, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create POST /dinners
func (h *DinnerHandler) Create(c *gin.Context) {
	var in store.DinnerInput
	if err := bindJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update PUT /dinners/:id
func (h *DinnerHandler) Update(c *gin.Context) {
	var in store.DinnerInput
	if err := bindJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.store.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete DELETE /dinners/:id
func (h *DinnerHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
