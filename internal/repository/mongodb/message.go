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

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(m *db.Mongo) *MessageStore {
	return &MessageStore{coll: m.Collection("messages")}
}

func (s *MessageStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &msg, nil
}

func (s *MessageStore) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Message, error) {
	if len(ids) == 0 {
		return []models.Message{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	out := make([]models.Message, 0, len(ids))
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

func (s *MessageStore) Insert(ctx context.Context, m *models.Message) error {
	now := time.Now().UTC()
	m.ID = bson.NewObjectID()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ReadBy == nil {
		m.ReadBy = []bson.ObjectID{}
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByConversation pages newest-first. The cursor is an _id bound:
// ObjectIDs embed their creation time, so "_id < before" is "created
// strictly before the cursor message" without a second sort key.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID bson.ObjectID, before *bson.ObjectID, limit int) ([]models.Message, error) {
	filter := bson.M{"conversationId": conversationID}
	if before != nil {
		filter["_id"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]models.Message, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

func (s *MessageStore) UnreadCounts(ctx context.Context, conversationIDs []bson.ObjectID, userID bson.ObjectID) (map[bson.ObjectID]int64, error) {
	counts := make(map[bson.ObjectID]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"conversationId": bson.M{"$in": conversationIDs},
			"sender":         bson.M{"$ne": userID},
			"readBy":         bson.M{"$ne": userID},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$conversationId",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate unread counts: %w", err)
	}

	var rows []struct {
		ConversationID bson.ObjectID `bson:"_id"`
		Count          int64         `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode unread counts: %w", err)
	}
	for _, r := range rows {
		counts[r.ConversationID] = r.Count
	}
	return counts, nil
}

// MarkConversationRead covers the whole conversation, not just one page.
// The filter excludes the caller's own messages and anything already
// read, so repeating it is a no-op.
func (s *MessageStore) MarkConversationRead(ctx context.Context, conversationID, userID bson.ObjectID) (int64, error) {
	filter := bson.M{
		"conversationId": conversationID,
		"sender":         bson.M{"$ne": userID},
		"readBy":         bson.M{"$ne": userID},
	}
	res, err := s.coll.UpdateMany(ctx, filter, bson.M{"$addToSet": bson.M{"readBy": userID}})
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, messageIDs []bson.ObjectID, userID bson.ObjectID) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":    bson.M{"$in": messageIDs},
		"sender": bson.M{"$ne": userID},
		"readBy": bson.M{"$ne": userID},
	}
	res, err := s.coll.UpdateMany(ctx, filter, bson.M{"$addToSet": bson.M{"readBy": userID}})
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return res.ModifiedCount, nil
}
