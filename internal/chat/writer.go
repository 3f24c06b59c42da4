package chat

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/apperr"
	"github.com/agencydesk/agencydesk/internal/metrics"
	"github.com/agencydesk/agencydesk/internal/models"
)

// WriteStrategy is how "append message + advance conversation pointer"
// is persisted.
type WriteStrategy int

const (
	// StrategyBestEffort runs the two writes sequentially with no
	// rollback. Used when the store cannot provide multi-document
	// transactions (standalone mongod), and as the downgrade path when
	// a transaction fails at runtime. The accepted weaker guarantee: a
	// message can exist whose conversation still points at an older
	// lastMessage. Partial failures are logged and counted so the drift
	// is observable.
	StrategyBestEffort WriteStrategy = iota
	// StrategyAtomic wraps both writes in a session transaction.
	StrategyAtomic
)

func (w WriteStrategy) String() string {
	if w == StrategyAtomic {
		return metrics.StrategyAtomic
	}
	return metrics.StrategyBestEffort
}

// SendMessage validates, persists, and returns the message with its
// sender denormalized, so the client can render it without a follow-up
// fetch. The caller must be a participant; the write also adds them to
// the participant set if they somehow are not (add-if-absent), and seeds
// readBy with the sender.
func (s *Service) SendMessage(ctx context.Context, caller *models.User, conversationID bson.ObjectID, content string, attachments []models.Attachment) (*models.MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, apperr.Validation("message content or attachment is required")
	}

	if _, err := s.requireParticipant(ctx, conversationID, caller.ID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       caller.ID,
		Content:        content,
		Attachments:    attachments,
		ReadBy:         []bson.ObjectID{caller.ID},
	}

	if err := s.persistMessage(ctx, msg); err != nil {
		return nil, err
	}

	return &models.MessageView{
		Message: *msg,
		Sender: models.UserSummary{
			ID:     caller.ID,
			Name:   caller.Name,
			Email:  caller.Email,
			Avatar: caller.Avatar,
		},
	}, nil
}

// persistMessage writes the message and the conversation update as one
// logical unit. On the atomic strategy a failed transaction, whether at
// start or on any step inside, is retried once as a best-effort
// sequential write; availability is preferred over atomicity here.
func (s *Service) persistMessage(ctx context.Context, msg *models.Message) error {
	if s.strategy == StrategyAtomic {
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.messages.Insert(ctx, msg); err != nil {
				return err
			}
			return s.conversations.SetLastMessage(ctx, msg.ConversationID, msg.ID, msg.SenderID)
		})
		if err == nil {
			metrics.MessageWritesTotal.WithLabelValues(metrics.StrategyAtomic).Inc()
			return nil
		}

		metrics.MessageWriteFallbacksTotal.Inc()
		s.logger.Warn("transactional message write failed, retrying best-effort",
			zap.String("conversation_id", msg.ConversationID.Hex()),
			zap.Error(err),
		)
	}

	return s.persistBestEffort(ctx, msg)
}

func (s *Service) persistBestEffort(ctx context.Context, msg *models.Message) error {
	if err := s.messages.Insert(ctx, msg); err != nil {
		return apperr.Store("insert message", err)
	}

	if err := s.conversations.SetLastMessage(ctx, msg.ConversationID, msg.ID, msg.SenderID); err != nil {
		// The message is already durable; no compensating delete. The
		// conversation's lastMessage pointer lags until the next
		// successful send.
		metrics.MessageWritePartialFailuresTotal.Inc()
		s.logger.Error("message persisted but conversation update failed",
			zap.String("conversation_id", msg.ConversationID.Hex()),
			zap.String("message_id", msg.ID.Hex()),
			zap.Error(err),
		)
	}

	metrics.MessageWritesTotal.WithLabelValues(metrics.StrategyBestEffort).Inc()
	return nil
}
