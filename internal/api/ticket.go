package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type TicketHandler struct {
	tickets repository.TicketRepository
	logger  *zap.Logger
}

func NewTicketHandler(tickets repository.TicketRepository, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// List handles GET /v1/tickets?q=<query>&status=<status>
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.tickets.List(c.Request.Context(), c.Query("q"), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// Get handles GET /v1/tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ticket, err := h.tickets.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ticketRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	ClientID    string   `json:"clientId"`
	Client      string   `json:"client"`
	ProjectID   string   `json:"projectId"`
	Type        *string  `json:"type"`
	Labels      []string `json:"labels"`
	AssignedTo  *string  `json:"assignedTo"`
	Status      *string  `json:"status"`
}

// Create handles POST /v1/tickets. The ticket number comes from a
// store-side counter so numbers stay unique under concurrent creates.
func (h *TicketHandler) Create(c *gin.Context) {
	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	ctx := c.Request.Context()
	ticketNo, err := h.tickets.NextTicketNo(ctx)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	caller := middleware.CurrentUser(c)
	now := time.Now()
	ticket := &models.Ticket{
		TicketNo:     ticketNo,
		Title:        strings.TrimSpace(req.Title),
		Client:       req.Client,
		RequestedBy:  caller.Name,
		Type:         "general",
		Labels:       req.Labels,
		Status:       "open",
		LastActivity: &now,
		Messages:     []models.TicketMessage{},
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Type != nil {
		ticket.Type = *req.Type
	}
	if req.AssignedTo != nil {
		ticket.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}

	if req.ClientID != "" {
		id, err := bson.ObjectIDFromHex(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clientId"})
			return
		}
		ticket.ClientID = &id
	}
	if caller.Role == models.RoleClient {
		ticket.ClientID = caller.ClientID
	}
	if req.ProjectID != "" {
		id, err := bson.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
			return
		}
		ticket.ProjectID = &id
	}

	if err := h.tickets.Create(ctx, ticket); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// Update handles PATCH /v1/tickets/:id
func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.TicketPatch{
		Description: req.Description,
		Type:        req.Type,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Labels:      req.Labels,
	}
	if req.Title != "" {
		title := strings.TrimSpace(req.Title)
		patch.Title = &title
	}

	ticket, err := h.tickets.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ticketMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddMessage handles POST /v1/tickets/:id/messages. It appends a
// discussion entry: plain text notes on the ticket, separate from chat.
func (h *TicketHandler) AddMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ticketMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CurrentUser(c)
	msg := models.TicketMessage{
		Text:      req.Text,
		CreatedBy: caller.Name,
		CreatedAt: time.Now(),
	}

	ticket, err := h.tickets.AppendMessage(c.Request.Context(), id, msg)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}
