package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
)

// fakeCounter stands in for Redis. Counts live in a map; errors can be
// injected per command to exercise the fail-open branches.
type fakeCounter struct {
	counts    map[string]int64
	incrErr   error
	expireErr error
	expired   []string
	deleted   []string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64)}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, _ time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expired = append(f.expired, key)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.counts, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newLimitedRouter(counter Counter, limit int, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(ContextKeyUser, user)
		}
	})
	r.POST("/v1/messages", RateLimit(counter, limit, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func post(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	user := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff, Status: models.StatusActive}

	t.Run("allows up to the limit then throttles", func(t *testing.T) {
		counter := newFakeCounter()
		r := newLimitedRouter(counter, 2, user)

		for i := 0; i < 2; i++ {
			if w := post(r); w.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
			}
		}
		w := post(r)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("over limit: status = %d, want 429", w.Code)
		}
		if len(counter.expired) != 1 {
			t.Fatalf("window set %d times, want once on first hit", len(counter.expired))
		}
	})

	t.Run("fails open when the counter is unreachable", func(t *testing.T) {
		counter := newFakeCounter()
		counter.incrErr = errors.New("connection refused")
		r := newLimitedRouter(counter, 1, user)

		for i := 0; i < 3; i++ {
			if w := post(r); w.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d, want 200 with redis down", i+1, w.Code)
			}
		}
	})

	t.Run("drops the counter when the window cannot be set", func(t *testing.T) {
		counter := newFakeCounter()
		counter.expireErr = errors.New("connection reset")
		r := newLimitedRouter(counter, 1, user)

		if w := post(r); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if len(counter.deleted) != 1 {
			t.Fatalf("counter deleted %d times, want 1; a TTL-less key must not persist", len(counter.deleted))
		}
		if len(counter.counts) != 0 {
			t.Fatalf("counts = %v, want empty after drop", counter.counts)
		}
	})

	t.Run("passes through without an authenticated user", func(t *testing.T) {
		counter := newFakeCounter()
		r := newLimitedRouter(counter, 1, nil)

		for i := 0; i < 3; i++ {
			if w := post(r); w.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
			}
		}
		if len(counter.counts) != 0 {
			t.Fatalf("counts = %v, want no counting without a user", counter.counts)
		}
	})

	t.Run("users get independent windows", func(t *testing.T) {
		counter := newFakeCounter()
		other := &models.User{ID: bson.NewObjectID(), Role: models.RoleStaff, Status: models.StatusActive}
		rA := newLimitedRouter(counter, 1, user)
		rB := newLimitedRouter(counter, 1, other)

		if w := post(rA); w.Code != http.StatusOK {
			t.Fatalf("first user: status = %d", w.Code)
		}
		if w := post(rA); w.Code != http.StatusTooManyRequests {
			t.Fatalf("first user over limit: status = %d, want 429", w.Code)
		}
		if w := post(rB); w.Code != http.StatusOK {
			t.Fatalf("second user: status = %d, want 200, windows must not be shared", w.Code)
		}
	})
}
