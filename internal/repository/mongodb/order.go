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

type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(m *db.Mongo) *OrderStore {
	return &OrderStore{coll: m.Collection("orders")}
}

func (s *OrderStore) List(ctx context.Context, query string, clientID *bson.ObjectID) ([]models.Order, error) {
	filter := bson.M{}
	if clientID != nil {
		filter["clientId"] = *clientID
	}
	if query != "" {
		rx := bson.M{"$regex": regexQuote(query), "$options": "i"}
		filter["$or"] = []bson.M{
			{"client": rx},
			{"status": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.ID = bson.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = "new"
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) Update(ctx context.Context, id bson.ObjectID, patch repository.OrderPatch) (*models.Order, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Client != nil {
		set["client"] = *patch.Client
	}
	if patch.ClientID != nil {
		set["clientId"] = *patch.ClientID
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Note != nil {
		set["note"] = *patch.Note
	}
	if patch.OrderDate != nil {
		set["orderDate"] = *patch.OrderDate
	}
	if patch.Items != nil {
		set["items"] = patch.Items
	}
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *OrderStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
