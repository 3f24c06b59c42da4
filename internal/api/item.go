package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type ItemHandler struct {
	items  repository.ItemRepository
	logger *zap.Logger
}

func NewItemHandler(items repository.ItemRepository, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, logger: logger}
}

// List handles GET /v1/items?q=<query>&category=<category>
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.List(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.items.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type itemRequest struct {
	Title              string   `json:"title"`
	Description        *string  `json:"description"`
	Category           string   `json:"category"`
	Unit               *string  `json:"unit"`
	Rate               *float64 `json:"rate"`
	Image              *string  `json:"image"`
	ShowInClientPortal *bool    `json:"showInClientPortal"`
}

// Create handles POST /v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	item := &models.Item{
		Title:    strings.TrimSpace(req.Title),
		Category: req.Category,
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	if req.ShowInClientPortal != nil {
		item.ShowInClientPortal = *req.ShowInClientPortal
	}

	if err := h.items.Create(c.Request.Context(), item); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update handles PATCH /v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.ItemPatch{
		Description:        req.Description,
		Unit:               req.Unit,
		Rate:               req.Rate,
		Image:              req.Image,
		ShowInClientPortal: req.ShowInClientPortal,
	}
	if req.Title != "" {
		title := strings.TrimSpace(req.Title)
		patch.Title = &title
	}
	if req.Category != "" {
		patch.Category = &req.Category
	}

	item, err := h.items.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /v1/items/:id (admin only).
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.items.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
