package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

const (
	lookupDefaultLimit = 20
	lookupMaxLimit     = 50
)

type UserHandler struct {
	users     repository.UserRepository
	employees repository.EmployeeRepository
	resolver  *identity.Resolver
	logger    *zap.Logger
}

func NewUserHandler(users repository.UserRepository, employees repository.EmployeeRepository, resolver *identity.Resolver, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, employees: employees, resolver: resolver, logger: logger}
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// Lookup handles GET /v1/users/lookup?q=<query>&limit=20. It searches the
// employee directory and synthesizes a User record for each hit, so staff
// who have never logged in are still addressable in chat. Employees
// without an email are skipped.
func (h *UserHandler) Lookup(c *gin.Context) {
	limit := lookupDefaultLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = n
	}
	if limit > lookupMaxLimit {
		limit = lookupMaxLimit
	}

	ctx := c.Request.Context()
	emps, err := h.employees.Search(ctx, c.Query("q"), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	users := make([]models.User, 0, len(emps))
	for i := range emps {
		u, err := h.resolver.EnsureUserForEmployee(ctx, &emps[i])
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		if u != nil {
			users = append(users, *u)
		}
	}
	c.JSON(http.StatusOK, users)
}

// AdminList handles GET /v1/users (admin only).
func (h *UserHandler) AdminList(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type adminUpdateUserRequest struct {
	Role        *string  `json:"role"`
	Status      *string  `json:"status"`
	Permissions []string `json:"permissions"`
}

// AdminUpdate handles PATCH /v1/users/:id (admin only).
func (h *UserHandler) AdminUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != nil {
		switch *req.Role {
		case models.RoleAdmin, models.RoleStaff, models.RoleClient:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case models.StatusActive, models.StatusInactive:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	user, err := h.users.UpdateAdminFields(c.Request.Context(), id, repository.AdminUserPatch{
		Role:        req.Role,
		Status:      req.Status,
		Permissions: req.Permissions,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
