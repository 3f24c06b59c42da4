package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

// LabelHandler serves one label catalog. Three instances are mounted,
// one each for ticket labels, task labels and note categories; only the
// backing collection and the default color differ.
type LabelHandler struct {
	labels       repository.LabelRepository
	defaultColor string
	logger       *zap.Logger
}

func NewLabelHandler(labels repository.LabelRepository, defaultColor string, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{labels: labels, defaultColor: defaultColor, logger: logger}
}

func (h *LabelHandler) List(c *gin.Context) {
	list, err := h.labels.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *LabelHandler) Create(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	l := &models.Label{
		Name:  name,
		Color: req.Color,
	}
	if l.Color == "" {
		l.Color = h.defaultColor
	}

	if err := h.labels.Create(c.Request.Context(), l); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *LabelHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch repository.LabelPatch
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		patch.Name = &name
	}
	if req.Color != "" {
		patch.Color = &req.Color
	}

	l, err := h.labels.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "label not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LabelHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.labels.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "label not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
