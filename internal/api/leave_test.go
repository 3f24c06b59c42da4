package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type fakeLeaves struct {
	byID map[bson.ObjectID]*models.Leave

	lastQuery      string
	lastEmployeeID *bson.ObjectID
}

func newFakeLeaves() *fakeLeaves {
	return &fakeLeaves{byID: make(map[bson.ObjectID]*models.Leave)}
}

func (f *fakeLeaves) GetByID(_ context.Context, id bson.ObjectID) (*models.Leave, error) {
	return f.byID[id], nil
}

func (f *fakeLeaves) List(_ context.Context, query string, employeeID *bson.ObjectID) ([]models.Leave, error) {
	f.lastQuery = query
	f.lastEmployeeID = employeeID

	out := make([]models.Leave, 0)
	for _, l := range f.byID {
		if employeeID != nil && l.EmployeeID != *employeeID {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLeaves) Create(_ context.Context, l *models.Leave) error {
	now := time.Now().UTC()
	l.ID = bson.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = models.LeavePending
	}
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLeaves) Update(_ context.Context, id bson.ObjectID, patch repository.LeavePatch) (*models.Leave, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if patch.Type != nil {
		l.Type = *patch.Type
	}
	if patch.StartDate != nil {
		l.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		l.EndDate = patch.EndDate
	}
	if patch.Reason != nil {
		l.Reason = *patch.Reason
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func (f *fakeLeaves) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

// stubLeaveEmployees backs the resolver; only the lookups the leave
// routes touch are implemented.
type stubLeaveEmployees struct {
	repository.EmployeeRepository
	byEmail map[string]*models.Employee
	byID    map[bson.ObjectID]*models.Employee
}

func (s *stubLeaveEmployees) GetByEmail(_ context.Context, email string) (*models.Employee, error) {
	return s.byEmail[email], nil
}

func (s *stubLeaveEmployees) GetByID(_ context.Context, id bson.ObjectID) (*models.Employee, error) {
	return s.byID[id], nil
}

func newLeaveRouter(leaves repository.LeaveRepository, employees repository.EmployeeRepository, caller *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := identity.NewResolver(nil, employees, zap.NewNop())
	h := NewLeaveHandler(leaves, employees, resolver, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUser, caller)
	})
	r.GET("/v1/leaves", h.List)
	r.POST("/v1/leaves", h.Create)
	r.PATCH("/v1/leaves/:id", h.Update)
	r.DELETE("/v1/leaves/:id", h.Delete)
	return r
}

func leaveFixture(t *testing.T) (*fakeLeaves, *stubLeaveEmployees, *models.User, *models.Employee) {
	t.Helper()

	emp := &models.Employee{
		ID:    bson.NewObjectID(),
		Name:  "Mira Voss",
		Email: "mira@example.com",
	}
	staff := &models.User{
		ID:     bson.NewObjectID(),
		Name:   "Mira Voss",
		Email:  "mira@example.com",
		Role:   models.RoleStaff,
		Status: models.StatusActive,
	}
	employees := &stubLeaveEmployees{
		byEmail: map[string]*models.Employee{emp.Email: emp},
		byID:    map[bson.ObjectID]*models.Employee{emp.ID: emp},
	}
	return newFakeLeaves(), employees, staff, emp
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLeaveList(t *testing.T) {
	t.Run("staff see only their own applications", func(t *testing.T) {
		leaves, employees, staff, emp := leaveFixture(t)
		other := bson.NewObjectID()
		leaves.byID[bson.NewObjectID()] = &models.Leave{ID: bson.NewObjectID(), EmployeeID: emp.ID, Type: "sick"}
		leaves.byID[bson.NewObjectID()] = &models.Leave{ID: bson.NewObjectID(), EmployeeID: other, Type: "casual"}

		r := newLeaveRouter(leaves, employees, staff)
		w := doJSON(t, r, http.MethodGet, "/v1/leaves?q=casual", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got []models.Leave
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0].EmployeeID != emp.ID {
			t.Fatalf("got %+v, want only own application", got)
		}
		if leaves.lastQuery != "" {
			t.Fatalf("query %q passed through for staff, want it dropped", leaves.lastQuery)
		}
		if leaves.lastEmployeeID == nil || *leaves.lastEmployeeID != emp.ID {
			t.Fatal("staff list was not scoped to their employee id")
		}
	})

	t.Run("admin filter passes through unscoped", func(t *testing.T) {
		leaves, employees, _, _ := leaveFixture(t)
		admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin, Status: models.StatusActive}

		r := newLeaveRouter(leaves, employees, admin)
		w := doJSON(t, r, http.MethodGet, "/v1/leaves?q=sick", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if leaves.lastQuery != "sick" {
			t.Fatalf("query = %q, want sick", leaves.lastQuery)
		}
		if leaves.lastEmployeeID != nil {
			t.Fatal("admin list should not be employee-scoped")
		}
	})
}

func TestLeaveCreate(t *testing.T) {
	t.Run("requires a type", func(t *testing.T) {
		leaves, employees, staff, _ := leaveFixture(t)
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodPost, "/v1/leaves", gin.H{"reason": "trip"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("staff always apply for themselves as pending", func(t *testing.T) {
		leaves, employees, staff, emp := leaveFixture(t)
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodPost, "/v1/leaves", gin.H{
			"type":       "sick",
			"employeeId": bson.NewObjectID().Hex(),
			"status":     models.LeaveApproved,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Leave
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.EmployeeID != emp.ID {
			t.Fatalf("employeeId = %s, want caller's own %s", got.EmployeeID.Hex(), emp.ID.Hex())
		}
		if got.Status != models.LeavePending {
			t.Fatalf("status = %q, want pending regardless of request", got.Status)
		}
		if got.Name != "Mira Voss" {
			t.Fatalf("name = %q, want denormalized employee name", got.Name)
		}
	})

	t.Run("admin files on behalf of an employee", func(t *testing.T) {
		leaves, employees, _, emp := leaveFixture(t)
		admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin, Status: models.StatusActive}
		r := newLeaveRouter(leaves, employees, admin)

		w := doJSON(t, r, http.MethodPost, "/v1/leaves", gin.H{
			"type":       "casual",
			"employeeId": emp.ID.Hex(),
			"status":     models.LeaveApproved,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Leave
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.EmployeeID != emp.ID || got.Status != models.LeaveApproved {
			t.Fatalf("got %+v, want approved leave for %s", got, emp.ID.Hex())
		}
	})

	t.Run("unknown employee is 404 for admin", func(t *testing.T) {
		leaves, employees, _, _ := leaveFixture(t)
		admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin, Status: models.StatusActive}
		r := newLeaveRouter(leaves, employees, admin)

		w := doJSON(t, r, http.MethodPost, "/v1/leaves", gin.H{
			"type":       "sick",
			"employeeId": bson.NewObjectID().Hex(),
		})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestLeaveUpdate(t *testing.T) {
	t.Run("missing application is 404", func(t *testing.T) {
		leaves, employees, staff, _ := leaveFixture(t)
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodPatch, "/v1/leaves/"+bson.NewObjectID().Hex(), gin.H{"reason": "x"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("staff cannot touch someone else's application", func(t *testing.T) {
		leaves, employees, staff, _ := leaveFixture(t)
		foreign := &models.Leave{ID: bson.NewObjectID(), EmployeeID: bson.NewObjectID(), Type: "sick", Status: models.LeavePending}
		leaves.byID[foreign.ID] = foreign
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodPatch, "/v1/leaves/"+foreign.ID.Hex(), gin.H{"reason": "x"})
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("staff status change is stripped", func(t *testing.T) {
		leaves, employees, staff, emp := leaveFixture(t)
		own := &models.Leave{ID: bson.NewObjectID(), EmployeeID: emp.ID, Type: "sick", Status: models.LeavePending}
		leaves.byID[own.ID] = own
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodPatch, "/v1/leaves/"+own.ID.Hex(), gin.H{
			"reason": "updated",
			"status": models.LeaveApproved,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Leave
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != models.LeavePending {
			t.Fatalf("status = %q, staff must not self-approve", got.Status)
		}
		if got.Reason != "updated" {
			t.Fatalf("reason = %q, want updated", got.Reason)
		}
	})

	t.Run("admin approves", func(t *testing.T) {
		leaves, employees, _, emp := leaveFixture(t)
		own := &models.Leave{ID: bson.NewObjectID(), EmployeeID: emp.ID, Type: "sick", Status: models.LeavePending}
		leaves.byID[own.ID] = own
		admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin, Status: models.StatusActive}
		r := newLeaveRouter(leaves, employees, admin)

		w := doJSON(t, r, http.MethodPatch, "/v1/leaves/"+own.ID.Hex(), gin.H{"status": models.LeaveApproved})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Leave
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status != models.LeaveApproved {
			t.Fatalf("status = %q, want approved", got.Status)
		}
	})
}

func TestLeaveDelete(t *testing.T) {
	t.Run("staff cannot withdraw someone else's application", func(t *testing.T) {
		leaves, employees, staff, _ := leaveFixture(t)
		foreign := &models.Leave{ID: bson.NewObjectID(), EmployeeID: bson.NewObjectID(), Status: models.LeavePending}
		leaves.byID[foreign.ID] = foreign
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodDelete, "/v1/leaves/"+foreign.ID.Hex(), nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("staff can withdraw only while pending", func(t *testing.T) {
		leaves, employees, staff, emp := leaveFixture(t)
		approved := &models.Leave{ID: bson.NewObjectID(), EmployeeID: emp.ID, Status: models.LeaveApproved}
		leaves.byID[approved.ID] = approved
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodDelete, "/v1/leaves/"+approved.ID.Hex(), nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}

		pending := &models.Leave{ID: bson.NewObjectID(), EmployeeID: emp.ID, Status: models.LeavePending}
		leaves.byID[pending.ID] = pending

		w = doJSON(t, r, http.MethodDelete, "/v1/leaves/"+pending.ID.Hex(), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if _, ok := leaves.byID[pending.ID]; ok {
			t.Fatal("pending application still present after delete")
		}
	})

	t.Run("missing application is 404", func(t *testing.T) {
		leaves, employees, staff, _ := leaveFixture(t)
		r := newLeaveRouter(leaves, employees, staff)

		w := doJSON(t, r, http.MethodDelete, "/v1/leaves/"+bson.NewObjectID().Hex(), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}
