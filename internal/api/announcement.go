package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type AnnouncementHandler struct {
	announcements repository.AnnouncementRepository
	logger        *zap.Logger
}

func NewAnnouncementHandler(announcements repository.AnnouncementRepository, logger *zap.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, logger: logger}
}

// List handles GET /v1/announcements?q=<query>&active=1
func (h *AnnouncementHandler) List(c *gin.Context) {
	var active *bool
	switch c.Query("active") {
	case "1":
		t := true
		active = &t
	case "0":
		f := false
		active = &f
	}

	list, err := h.announcements.List(c.Request.Context(), c.Query("q"), active)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type announcementRequest struct {
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	StartDate *time.Time        `json:"startDate"`
	EndDate   *time.Time        `json:"endDate"`
	IsActive  *bool             `json:"isActive"`
	ShareWith *models.ShareWith `json:"shareWith"`
}

// Create handles POST /v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	caller := middleware.CurrentUser(c)
	a := &models.Announcement{
		Title:         strings.TrimSpace(req.Title),
		Message:       req.Message,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      true,
		CreatedBy:     &caller.ID,
		CreatedByName: caller.Name,
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.ShareWith != nil {
		a.ShareWith = *req.ShareWith
	}

	if err := h.announcements.Create(c.Request.Context(), a); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Update handles PATCH /v1/announcements/:id
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.AnnouncementPatch{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive,
		ShareWith: req.ShareWith,
	}
	if req.Title != "" {
		title := strings.TrimSpace(req.Title)
		patch.Title = &title
	}
	if req.Message != "" {
		patch.Message = &req.Message
	}

	a, err := h.announcements.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /v1/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.announcements.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
