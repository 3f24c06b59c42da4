package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/apperr"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("title is required"), http.StatusBadRequest},
		{"not found", apperr.NotFound("conversation not found"), http.StatusNotFound},
		{"forbidden", apperr.Forbidden("not a participant"), http.StatusForbidden},
		{"store", apperr.Store("insert message", errors.New("socket closed")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(c, zap.NewNop(), tc.err)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("valid hex", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "64b7f0a1e4b0a1e4b0a1e4b0"}}

		id, ok := pathID(c)
		if !ok {
			t.Fatal("expected ok")
		}
		if id.Hex() != "64b7f0a1e4b0a1e4b0a1e4b0" {
			t.Fatalf("id = %s", id.Hex())
		}
	})

	t.Run("garbage writes 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		if _, ok := pathID(c); ok {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}
