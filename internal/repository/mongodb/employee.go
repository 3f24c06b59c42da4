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

type EmployeeStore struct {
	coll *mongo.Collection
}

func NewEmployeeStore(m *db.Mongo) *EmployeeStore {
	return &EmployeeStore{coll: m.Collection("employees")}
}

func (s *EmployeeStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Employee, error) {
	var e models.Employee
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

// GetByEmail matches the stored email case-insensitively; employee
// records come from HR imports and their casing is not trustworthy.
func (s *EmployeeStore) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	filter := bson.M{"email": bson.M{"$regex": "^" + regexQuote(email) + "$", "$options": "i"}}
	var e models.Employee
	err := s.coll.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by email: %w", err)
	}
	return &e, nil
}

func (s *EmployeeStore) Search(ctx context.Context, query string, limit int) ([]models.Employee, error) {
	filter := bson.M{}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": rx},
			{"email": rx},
			{"department": rx},
			{"role": rx},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	out := make([]models.Employee, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return out, nil
}

func (s *EmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]models.Employee, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return out, nil
}

func (s *EmployeeStore) Create(ctx context.Context, e *models.Employee) error {
	now := time.Now().UTC()
	e.ID = bson.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}
