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
)

type AttendanceStore struct {
	coll *mongo.Collection
}

func NewAttendanceStore(m *db.Mongo) *AttendanceStore {
	return &AttendanceStore{coll: m.Collection("attendance")}
}

func (s *AttendanceStore) OpenEntry(ctx context.Context, employeeID bson.ObjectID, from, to time.Time) (*models.Attendance, error) {
	filter := bson.M{
		"employeeId": employeeID,
		"date":       bson.M{"$gte": from, "$lt": to},
		"clockOut":   bson.M{"$exists": false},
	}
	var a models.Attendance
	err := s.coll.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open attendance: %w", err)
	}
	return &a, nil
}

func (s *AttendanceStore) Create(ctx context.Context, a *models.Attendance) error {
	now := time.Now().UTC()
	a.ID = bson.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (s *AttendanceStore) CloseEntry(ctx context.Context, employeeID bson.ObjectID, from, to, at time.Time) (*models.Attendance, error) {
	filter := bson.M{
		"employeeId": employeeID,
		"date":       bson.M{"$gte": from, "$lt": to},
		"clockOut":   bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"clockOut": at, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Attendance
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("close attendance: %w", err)
	}
	return &a, nil
}

func (s *AttendanceStore) ListRange(ctx context.Context, from, to time.Time) ([]models.Attendance, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lt": to}}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]models.Attendance, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return out, nil
}
