package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type OrderHandler struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewOrderHandler(orders repository.OrderRepository, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// List handles GET /v1/orders?q=<query>. Clients only ever see their own
// orders; the tenant filter comes from the token, not the query string.
func (h *OrderHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	var clientID *bson.ObjectID
	if caller.Role == models.RoleClient {
		if caller.ClientID == nil {
			c.JSON(http.StatusOK, []models.Order{})
			return
		}
		clientID = caller.ClientID
	}

	orders, err := h.orders.List(c.Request.Context(), c.Query("q"), clientID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	caller := middleware.CurrentUser(c)
	if caller.Role == models.RoleClient {
		if caller.ClientID == nil || order.ClientID == nil || *caller.ClientID != *order.ClientID {
			c.JSON(http.StatusForbidden, gin.H{"error": "order does not belong to client"})
			return
		}
	}
	c.JSON(http.StatusOK, order)
}

type orderRequest struct {
	ClientID  string             `json:"clientId"`
	Client    string             `json:"client"`
	Items     []models.OrderItem `json:"items"`
	Status    *string            `json:"status"`
	OrderDate *time.Time         `json:"orderDate"`
	Note      *string            `json:"note"`
}

// Create handles POST /v1/orders. The order number is sequential and the
// amount is always recomputed from the lines; client-sent totals are
// ignored.
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	count, err := h.orders.Count(ctx)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items, amount := normalizeOrderItems(req.Items)
	order := &models.Order{
		Number: fmt.Sprintf("ORDER #%d", count+1),
		Client: req.Client,
		Items:  items,
		Amount: amount,
		Status: "pending",
	}
	if req.Status != nil {
		order.Status = *req.Status
	}
	if req.Note != nil {
		order.Note = *req.Note
	}
	order.OrderDate = req.OrderDate

	if req.ClientID != "" {
		id, err := bson.ObjectIDFromHex(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clientId"})
			return
		}
		order.ClientID = &id
	}

	caller := middleware.CurrentUser(c)
	if caller.Role == models.RoleClient {
		order.ClientID = caller.ClientID
	}

	if err := h.orders.Create(ctx, order); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Update handles PATCH /v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.OrderPatch{
		Status:    req.Status,
		Note:      req.Note,
		OrderDate: req.OrderDate,
	}
	if req.Client != "" {
		patch.Client = &req.Client
	}
	if req.ClientID != "" {
		cid, err := bson.ObjectIDFromHex(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clientId"})
			return
		}
		patch.ClientID = &cid
	}
	if req.Items != nil {
		items, amount := normalizeOrderItems(req.Items)
		patch.Items = items
		patch.Amount = &amount
	}

	order, err := h.orders.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /v1/orders/:id (admin only).
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.orders.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func normalizeOrderItems(items []models.OrderItem) ([]models.OrderItem, float64) {
	var amount float64
	out := make([]models.OrderItem, len(items))
	for i, it := range items {
		it.Total = it.Quantity * it.Rate
		amount += it.Total
		out[i] = it
	}
	return out, amount
}
