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

type ConversationStore struct {
	coll *mongo.Collection
}

func NewConversationStore(m *db.Mongo) *ConversationStore {
	return &ConversationStore{coll: m.Collection("conversations")}
}

func (s *ConversationStore) GetByID(ctx context.Context, id bson.ObjectID) (*models.Conversation, error) {
	var c models.Conversation
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

func (s *ConversationStore) ListByParticipant(ctx context.Context, userID bson.ObjectID) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]models.Conversation, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return out, nil
}

// FindDirect requires the stored participant array to contain all the
// given members AND have the same size, an exact set match, so a 1:1
// thread between A and B is never confused with a group that merely
// includes both.
func (s *ConversationStore) FindDirect(ctx context.Context, participants []bson.ObjectID) (*models.Conversation, error) {
	filter := bson.M{
		"participants": bson.M{
			"$all":  participants,
			"$size": len(participants),
		},
	}
	var c models.Conversation
	err := s.coll.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find direct conversation: %w", err)
	}
	return &c, nil
}

func (s *ConversationStore) FindByProjectAndParticipant(ctx context.Context, projectID, userID bson.ObjectID) (*models.Conversation, error) {
	filter := bson.M{"projectId": projectID, "participants": userID}
	var c models.Conversation
	err := s.coll.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find project conversation: %w", err)
	}
	return &c, nil
}

func (s *ConversationStore) Create(ctx context.Context, c *models.Conversation) error {
	now := time.Now().UTC()
	c.ID = bson.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// SetLastMessage is a single-document update: the store applies $set and
// $addToSet atomically, which is all the consistency the non-transactional
// write path gets.
func (s *ConversationStore) SetLastMessage(ctx context.Context, conversationID, messageID, senderID bson.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"lastMessage": messageID,
			"updatedAt":   time.Now().UTC(),
		},
		"$addToSet": bson.M{"participants": senderID},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		return fmt.Errorf("update conversation last message: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update conversation last message: conversation %s not found", conversationID.Hex())
	}
	return nil
}
