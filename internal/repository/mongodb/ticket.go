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

type TicketStore struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewTicketStore(m *db.Mongo) *TicketStore {
	return &TicketStore{
		coll:     m.Collection("tickets"),
		counters: m.Collection("counters"),
	}
}

func (s *TicketStore) List(ctx context.Context, query, status string) ([]models.Ticket, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"title": rx},
			{"description": rx},
			{"client": rx},
			{"requestedBy": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	out := make([]models.Ticket, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return out, nil
}

func (s *TicketStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Ticket, error) {
	var t models.Ticket
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

func (s *TicketStore) Create(ctx context.Context, t *models.Ticket) error {
	now := time.Now().UTC()
	t.ID = bson.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Type == "" {
		t.Type = "general"
	}
	if t.Status == "" {
		t.Status = "open"
	}
	if t.Messages == nil {
		t.Messages = []models.TicketMessage{}
	}
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *TicketStore) Update(ctx context.Context, id bson.ObjectID, patch repository.TicketPatch) (*models.Ticket, error) {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now, "lastActivity": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.AssignedTo != nil {
		set["assignedTo"] = *patch.AssignedTo
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Labels != nil {
		set["labels"] = patch.Labels
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Ticket
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return &t, nil
}

func (s *TicketStore) AppendMessage(ctx context.Context, id bson.ObjectID, msg models.TicketMessage) (*models.Ticket, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"lastActivity": now, "updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Ticket
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("append ticket message: %w", err)
	}
	return &t, nil
}

// NextTicketNo uses a counter document so numbers survive deletions; an
// upserted findOneAndUpdate with $inc is atomic on the counter.
func (s *TicketStore) NextTicketNo(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "tickets"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next ticket number: %w", err)
	}
	return doc.Seq, nil
}
