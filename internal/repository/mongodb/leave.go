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

type LeaveStore struct {
	coll *mongo.Collection
}

func NewLeaveStore(m *db.Mongo) *LeaveStore {
	return &LeaveStore{coll: m.Collection("leaves")}
}

func (s *LeaveStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Leave, error) {
	var l models.Leave
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get leave: %w", err)
	}
	return &l, nil
}

func (s *LeaveStore) List(ctx context.Context, query string, employeeID *bson.ObjectID) ([]models.Leave, error) {
	filter := bson.M{}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": rx},
			{"type": rx},
		}
	}
	if employeeID != nil {
		filter["employeeId"] = *employeeID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	out := make([]models.Leave, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode leaves: %w", err)
	}
	return out, nil
}

func (s *LeaveStore) Create(ctx context.Context, l *models.Leave) error {
	now := time.Now().UTC()
	l.ID = bson.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = models.LeavePending
	}
	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert leave: %w", err)
	}
	return nil
}

func (s *LeaveStore) Update(ctx context.Context, id bson.ObjectID, patch repository.LeavePatch) (*models.Leave, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.Reason != nil {
		set["reason"] = *patch.Reason
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l models.Leave
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update leave: %w", err)
	}
	return &l, nil
}

func (s *LeaveStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete leave: %w", err)
	}
	return res.DeletedCount > 0, nil
}
