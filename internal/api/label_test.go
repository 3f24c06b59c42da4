package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type fakeLabels struct {
	byID map[bson.ObjectID]*models.Label
}

func newFakeLabels() *fakeLabels {
	return &fakeLabels{byID: make(map[bson.ObjectID]*models.Label)}
}

func (f *fakeLabels) List(_ context.Context) ([]models.Label, error) {
	out := make([]models.Label, 0)
	for _, l := range f.byID {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLabels) Create(_ context.Context, l *models.Label) error {
	now := time.Now().UTC()
	l.ID = bson.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLabels) Update(_ context.Context, id bson.ObjectID, patch repository.LabelPatch) (*models.Label, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Color != nil {
		l.Color = *patch.Color
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func (f *fakeLabels) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func newLabelRouter(labels repository.LabelRepository, defaultColor string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLabelHandler(labels, defaultColor, zap.NewNop())

	r := gin.New()
	r.GET("/v1/ticket-labels", h.List)
	r.POST("/v1/ticket-labels", h.Create)
	r.PATCH("/v1/ticket-labels/:id", h.Update)
	r.DELETE("/v1/ticket-labels/:id", h.Delete)
	return r
}

func TestLabelCreate(t *testing.T) {
	t.Run("requires a name", func(t *testing.T) {
		r := newLabelRouter(newFakeLabels(), "#4F46E5")

		w := doJSON(t, r, http.MethodPost, "/v1/ticket-labels", gin.H{"color": "#FF0000"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}

		w = doJSON(t, r, http.MethodPost, "/v1/ticket-labels", gin.H{"name": "   "})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("whitespace name: status = %d, want 400", w.Code)
		}
	})

	t.Run("applies the catalog default color", func(t *testing.T) {
		r := newLabelRouter(newFakeLabels(), "#4F46E5")

		w := doJSON(t, r, http.MethodPost, "/v1/ticket-labels", gin.H{"name": "Billing"})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Label
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Color != "#4F46E5" {
			t.Fatalf("color = %q, want catalog default", got.Color)
		}
		if got.Name != "Billing" {
			t.Fatalf("name = %q", got.Name)
		}
	})

	t.Run("explicit color wins over the default", func(t *testing.T) {
		r := newLabelRouter(newFakeLabels(), "#4F46E5")

		w := doJSON(t, r, http.MethodPost, "/v1/ticket-labels", gin.H{"name": "Urgent", "color": "#DC2626"})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d", w.Code)
		}
		var got models.Label
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Color != "#DC2626" {
			t.Fatalf("color = %q, want #DC2626", got.Color)
		}
	})

	t.Run("catalogs without a default keep color empty", func(t *testing.T) {
		r := newLabelRouter(newFakeLabels(), "")

		w := doJSON(t, r, http.MethodPost, "/v1/ticket-labels", gin.H{"name": "Design"})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d", w.Code)
		}
		var got models.Label
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Color != "" {
			t.Fatalf("color = %q, want empty", got.Color)
		}
	})
}

func TestLabelUpdate(t *testing.T) {
	t.Run("missing label is 404", func(t *testing.T) {
		r := newLabelRouter(newFakeLabels(), "")

		w := doJSON(t, r, http.MethodPatch, "/v1/ticket-labels/"+bson.NewObjectID().Hex(), gin.H{"name": "X"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("renames and recolors", func(t *testing.T) {
		labels := newFakeLabels()
		l := &models.Label{ID: bson.NewObjectID(), Name: "Bug", Color: "#111111"}
		labels.byID[l.ID] = l
		r := newLabelRouter(labels, "")

		w := doJSON(t, r, http.MethodPatch, "/v1/ticket-labels/"+l.ID.Hex(), gin.H{"name": "Defect", "color": "#222222"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var got models.Label
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Name != "Defect" || got.Color != "#222222" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestLabelDelete(t *testing.T) {
	labels := newFakeLabels()
	l := &models.Label{ID: bson.NewObjectID(), Name: "Old"}
	labels.byID[l.ID] = l
	r := newLabelRouter(labels, "")

	w := doJSON(t, r, http.MethodDelete, "/v1/ticket-labels/"+l.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if _, ok := labels.byID[l.ID]; ok {
		t.Fatal("label still present after delete")
	}

	w = doJSON(t, r, http.MethodDelete, "/v1/ticket-labels/"+l.ID.Hex(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", w.Code)
	}
}
