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

type AnnouncementStore struct {
	coll *mongo.Collection
}

func NewAnnouncementStore(m *db.Mongo) *AnnouncementStore {
	return &AnnouncementStore{coll: m.Collection("announcements")}
}

func (s *AnnouncementStore) List(ctx context.Context, query string, active *bool) ([]models.Announcement, error) {
	filter := bson.M{}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"message": rx},
			{"createdByName": rx},
		}
	}
	if active != nil {
		filter["isActive"] = *active
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	out := make([]models.Announcement, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	return out, nil
}

func (s *AnnouncementStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Announcement, error) {
	var a models.Announcement
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &a, nil
}

func (s *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	now := time.Now().UTC()
	a.ID = bson.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

func (s *AnnouncementStore) Update(ctx context.Context, id bson.ObjectID, patch repository.AnnouncementPatch) (*models.Announcement, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Message != nil {
		set["message"] = *patch.Message
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.IsActive != nil {
		set["isActive"] = *patch.IsActive
	}
	if patch.ShareWith != nil {
		set["shareWith"] = *patch.ShareWith
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Announcement
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	return &a, nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete announcement: %w", err)
	}
	return res.DeletedCount > 0, nil
}
