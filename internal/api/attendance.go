package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type AttendanceHandler struct {
	attendance repository.AttendanceRepository
	employees  repository.EmployeeRepository
	resolver   *identity.Resolver
	logger     *zap.Logger
}

func NewAttendanceHandler(attendance repository.AttendanceRepository, employees repository.EmployeeRepository, resolver *identity.Resolver, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, employees: employees, resolver: resolver, logger: logger}
}

type clockRequest struct {
	EmployeeID string `json:"employeeId"`
}

// resolveEmployee maps the request to the employee being clocked. Staff
// can only clock themselves; admins may clock any employee by id.
func (h *AttendanceHandler) resolveEmployee(c *gin.Context, requested string) (*models.Employee, bool) {
	caller := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if caller.Role == models.RoleAdmin && requested != "" {
		id, err := bson.ObjectIDFromHex(requested)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return nil, false
		}
		emp, err := h.employees.GetByID(ctx, id)
		if err != nil {
			writeError(c, h.logger, err)
			return nil, false
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return nil, false
		}
		return emp, true
	}

	emp, err := h.resolver.EmployeeForUser(ctx, caller)
	if err != nil {
		writeError(c, h.logger, err)
		return nil, false
	}
	if requested != "" && requested != emp.ID.Hex() {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only clock attendance for yourself"})
		return nil, false
	}
	return emp, true
}

// dayBounds returns [midnight, midnight+24h) around t in local time.
func dayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.Add(24 * time.Hour)
}

// ClockIn handles POST /v1/attendance/clock-in. Idempotent within a day:
// if an open entry already exists it is returned with 200 instead of
// opening a second shift.
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	var req clockRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, ok := h.resolveEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	from, to := dayBounds(now)

	open, err := h.attendance.OpenEntry(ctx, emp.ID, from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if open != nil {
		c.JSON(http.StatusOK, open)
		return
	}

	entry := &models.Attendance{
		EmployeeID: emp.ID,
		Name:       emp.DisplayName(),
		Date:       from,
		ClockIn:    now,
	}
	if err := h.attendance.Create(ctx, entry); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ClockOut handles POST /v1/attendance/clock-out. 404 when there is no
// open shift today.
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	var req clockRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp, ok := h.resolveEmployee(c, req.EmployeeID)
	if !ok {
		return
	}

	now := time.Now()
	from, to := dayBounds(now)

	entry, err := h.attendance.CloseEntry(c.Request.Context(), emp.ID, from, to, now)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open attendance entry for today"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// List handles GET /v1/attendance?from=2026-08-01&to=2026-08-31. Without
// parameters it returns today's entries.
func (h *AttendanceHandler) List(c *gin.Context) {
	now := time.Now()
	from, to := dayBounds(now)

	if f := c.Query("from"); f != "" {
		parsed, err := time.ParseInLocation("2006-01-02", f, now.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if t := c.Query("to"); t != "" {
		parsed, err := time.ParseInLocation("2006-01-02", t, now.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, expected YYYY-MM-DD"})
			return
		}
		to = parsed.Add(24 * time.Hour)
	}

	entries, err := h.attendance.ListRange(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
