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

type ProjectStore struct {
	coll *mongo.Collection
}

func NewProjectStore(m *db.Mongo) *ProjectStore {
	return &ProjectStore{coll: m.Collection("projects")}
}

func (s *ProjectStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Project, error) {
	var p models.Project
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context, query string) ([]models.Project, error) {
	filter := bson.M{}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"client": rx},
			{"status": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]models.Project, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	now := time.Now().UTC()
	p.ID = bson.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = "open"
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *ProjectStore) Update(ctx context.Context, id bson.ObjectID, patch repository.ProjectPatch) (*models.Project, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Labels != nil {
		set["labels"] = *patch.Labels
	}
	if patch.Progress != nil {
		set["progress"] = *patch.Progress
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Start != nil {
		set["start"] = *patch.Start
	}
	if patch.Deadline != nil {
		set["deadline"] = *patch.Deadline
	}
	if patch.EmployeeID != nil {
		set["employeeId"] = *patch.EmployeeID
	}
	if patch.Members != nil {
		set["members"] = patch.Members
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Project
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}
