package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agencydesk/agencydesk/internal/db"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

// LabelStore serves one label catalog. The three catalogs (ticket
// labels, task labels, note categories) are separate collections with
// the same document shape, so one store type covers all of them.
type LabelStore struct {
	coll *mongo.Collection
}

func NewLabelStore(m *db.Mongo, collection string) *LabelStore {
	return &LabelStore{coll: m.Collection(collection)}
}

func (s *LabelStore) List(ctx context.Context) ([]models.Label, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	out := make([]models.Label, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	return out, nil
}

func (s *LabelStore) Create(ctx context.Context, l *models.Label) error {
	now := time.Now().UTC()
	l.ID = bson.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert label: %w", err)
	}
	return nil
}

func (s *LabelStore) Update(ctx context.Context, id bson.ObjectID, patch repository.LabelPatch) (*models.Label, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l models.Label
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update label: %w", err)
	}
	return &l, nil
}

func (s *LabelStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete label: %w", err)
	}
	return res.DeletedCount > 0, nil
}
