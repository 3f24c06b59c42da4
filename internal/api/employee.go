package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type EmployeeHandler struct {
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

func NewEmployeeHandler(employees repository.EmployeeRepository, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, logger: logger}
}

// List handles GET /v1/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	emps, err := h.employees.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emps)
}

// Get handles GET /v1/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	emp, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if emp == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	c.JSON(http.StatusOK, emp)
}

type createEmployeeRequest struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Initials   string `json:"initials"`
	Email      string `json:"email" binding:"required"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Avatar     string `json:"avatar"`
}

// Create handles POST /v1/employees (admin only).
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp := &models.Employee{
		Name:       req.Name,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Initials:   req.Initials,
		Email:      identity.NormalizeEmail(req.Email),
		Department: req.Department,
		Role:       req.Role,
		Avatar:     req.Avatar,
	}
	if err := h.employees.Create(c.Request.Context(), emp); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, emp)
}
