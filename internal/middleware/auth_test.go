package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/agencydesk/agencydesk/internal/auth"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type stubUsers struct {
	users map[bson.ObjectID]*models.User
}

func (s *stubUsers) GetByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) GetByEmail(context.Context, string) (*models.User, error) { return nil, nil }

func (s *stubUsers) EnsureStaffByEmail(context.Context, string, string, string) (*models.User, error) {
	return nil, nil
}

func (s *stubUsers) ListActiveAdmins(context.Context) ([]models.User, error) { return nil, nil }
func (s *stubUsers) List(context.Context) ([]models.User, error)             { return nil, nil }

func (s *stubUsers) UpdateAdminFields(context.Context, bson.ObjectID, repository.AdminUserPatch) (*models.User, error) {
	return nil, nil
}

func (s *stubUsers) Summaries(context.Context, []bson.ObjectID) ([]models.UserSummary, error) {
	return nil, nil
}

const testSecret = "test-secret"

func newAuthRouter(users *stubUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, users))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentUser(c))
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(u.ID, u.Role, u.Email, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	active := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff, Status: models.StatusActive}
	inactive := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff, Status: models.StatusInactive}
	users := &stubUsers{users: map[bson.ObjectID]*models.User{
		active.ID:   active,
		inactive.ID: inactive,
	}}
	r := newAuthRouter(users)

	t.Run("missing header", func(t *testing.T) {
		if w := doGet(t, r, "/me", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		if w := doGet(t, r, "/me", tokenFor(t, active)); w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("inactive user is rejected despite a valid token", func(t *testing.T) {
		if w := doGet(t, r, "/me", tokenFor(t, inactive)); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("token for a deleted user is rejected", func(t *testing.T) {
		ghost := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff}
		if w := doGet(t, r, "/me", tokenFor(t, ghost)); w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	staff := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff, Status: models.StatusActive}
	admin := &models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin, Status: models.StatusActive}
	users := &stubUsers{users: map[bson.ObjectID]*models.User{
		staff.ID: staff,
		admin.ID: admin,
	}}
	r := newAuthRouter(users)

	if w := doGet(t, r, "/admin", tokenFor(t, staff)); w.Code != http.StatusForbidden {
		t.Fatalf("staff status = %d, want 403", w.Code)
	}
	if w := doGet(t, r, "/admin", tokenFor(t, admin)); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}
