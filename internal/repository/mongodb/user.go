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

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(m *db.Mongo) *UserStore {
	return &UserStore{coll: m.Collection("users")}
}

func (s *UserStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// EnsureStaffByEmail upserts a user keyed by the unique email index.
// $setOnInsert seeds the identity defaults exactly once; $set refreshes
// the display fields on every call (last write wins). Concurrent callers
// converge on the same document.
func (s *UserStore) EnsureStaffByEmail(ctx context.Context, email, name, avatar string) (*models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":     email,
			"username":  email,
			"role":      models.RoleStaff,
			"status":    models.StatusActive,
			"createdBy": "employee-sync",
			"createdAt": now,
		},
		"$set": bson.M{
			"name":      name,
			"avatar":    avatar,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&u); err != nil {
		return nil, fmt.Errorf("ensure user for %s: %w", email, err)
	}
	return &u, nil
}

func (s *UserStore) ListActiveAdmins(ctx context.Context) ([]models.User, error) {
	filter := bson.M{"role": models.RoleAdmin, "status": models.StatusActive}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	admins := make([]models.User, 0)
	if err := cur.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("decode admins: %w", err)
	}
	return admins, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdateAdminFields(ctx context.Context, id bson.ObjectID, patch repository.AdminUserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Permissions != nil {
		set["permissions"] = patch.Permissions
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Summaries(ctx context.Context, ids []bson.ObjectID) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}
	opts := options.Find().SetProjection(bson.M{
		"name": 1, "email": 1, "avatar": 1, "role": 1,
	})
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("load user summaries: %w", err)
	}
	out := make([]models.UserSummary, 0, len(ids))
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode user summaries: %w", err)
	}
	return out, nil
}
