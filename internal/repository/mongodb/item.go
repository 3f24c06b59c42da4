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

type ItemStore struct {
	coll *mongo.Collection
}

func NewItemStore(m *db.Mongo) *ItemStore {
	return &ItemStore{coll: m.Collection("items")}
}

func (s *ItemStore) List(ctx context.Context, query, category string) ([]models.Item, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"description": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]models.Item, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return out, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Item, error) {
	var it models.Item
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (s *ItemStore) Create(ctx context.Context, i *models.Item) error {
	now := time.Now().UTC()
	i.ID = bson.NewObjectID()
	i.CreatedAt = now
	i.UpdatedAt = now
	if i.Category == "" {
		i.Category = "general"
	}
	if _, err := s.coll.InsertOne(ctx, i); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *ItemStore) Update(ctx context.Context, id bson.ObjectID, patch repository.ItemPatch) (*models.Item, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Unit != nil {
		set["unit"] = *patch.Unit
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Rate != nil {
		set["rate"] = *patch.Rate
	}
	if patch.ShowInClientPortal != nil {
		set["showInClientPortal"] = *patch.ShowInClientPortal
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var it models.Item
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&it)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &it, nil
}

func (s *ItemStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return res.DeletedCount > 0, nil
}
