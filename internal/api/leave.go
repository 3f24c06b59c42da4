package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type LeaveHandler struct {
	leaves    repository.LeaveRepository
	employees repository.EmployeeRepository
	resolver  *identity.Resolver
	logger    *zap.Logger
}

func NewLeaveHandler(leaves repository.LeaveRepository, employees repository.EmployeeRepository, resolver *identity.Resolver, logger *zap.Logger) *LeaveHandler {
	return &LeaveHandler{leaves: leaves, employees: employees, resolver: resolver, logger: logger}
}

// List handles GET /v1/leaves?q=<query>. Staff see only their own
// applications; the q filter applies to everyone else.
func (h *LeaveHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var employeeID *bson.ObjectID
	query := c.Query("q")
	if caller.Role == models.RoleStaff {
		emp, err := h.resolver.EmployeeForUser(ctx, caller)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		employeeID = &emp.ID
		query = ""
	}

	list, err := h.leaves.List(ctx, query, employeeID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type leaveRequest struct {
	EmployeeID string     `json:"employeeId"`
	Type       string     `json:"type"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
}

// Create handles POST /v1/leaves. Staff always apply for themselves and
// always start in pending; an admin may file on behalf of any employee.
func (h *LeaveHandler) Create(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Type) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}

	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var emp *models.Employee
	if caller.Role == models.RoleAdmin && req.EmployeeID != "" {
		id, err := bson.ObjectIDFromHex(req.EmployeeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return
		}
		emp, err = h.employees.GetByID(ctx, id)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return
		}
	} else {
		var err error
		emp, err = h.resolver.EmployeeForUser(ctx, caller)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
	}

	l := &models.Leave{
		EmployeeID: emp.ID,
		Name:       emp.DisplayName(),
		Type:       strings.TrimSpace(req.Type),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
		Status:     models.LeavePending,
	}
	if caller.Role == models.RoleAdmin && req.Status != "" {
		l.Status = req.Status
	}

	if err := h.leaves.Create(ctx, l); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// Update handles PATCH /v1/leaves/:id. Staff can edit only their own
// applications and cannot touch the status field.
func (h *LeaveHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	existing, err := h.leaves.GetByID(ctx, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave application not found"})
		return
	}

	isStaff := caller.Role == models.RoleStaff
	if isStaff {
		emp, err := h.resolver.EmployeeForUser(ctx, caller)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if existing.EmployeeID != emp.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "can only update your own leave applications"})
			return
		}
	}

	patch := repository.LeavePatch{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if t := strings.TrimSpace(req.Type); t != "" {
		patch.Type = &t
	}
	if req.Reason != "" {
		patch.Reason = &req.Reason
	}
	if req.Status != "" && !isStaff {
		patch.Status = &req.Status
	}

	l, err := h.leaves.Update(ctx, id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave application not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

// Delete handles DELETE /v1/leaves/:id. Staff can withdraw only their
// own applications, and only while still pending.
func (h *LeaveHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	existing, err := h.leaves.GetByID(ctx, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave application not found"})
		return
	}

	if caller.Role == models.RoleStaff {
		emp, err := h.resolver.EmployeeForUser(ctx, caller)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if existing.EmployeeID != emp.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "can only delete your own leave applications"})
			return
		}
		if existing.Status != models.LeavePending {
			c.JSON(http.StatusForbidden, gin.H{"error": "can only delete pending leave applications"})
			return
		}
	}

	deleted, err := h.leaves.Delete(ctx, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave application not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
