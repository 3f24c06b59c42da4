// Package chat is the messaging core: conversation lifecycle, participant
// membership, unread tracking, and the message write path.
package chat

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/apperr"
	"github.com/agencydesk/agencydesk/internal/identity"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

// TxRunner is the slice of the store the writer needs for atomic writes.
// *db.Mongo satisfies it; tests substitute a stub.
type TxRunner interface {
	SupportsTransactions() bool
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultPageSize and MaxPageSize bound message pagination.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type Service struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	projects      repository.ProjectRepository
	employees     repository.EmployeeRepository
	resolver      *identity.Resolver
	tx            TxRunner
	strategy      WriteStrategy
	logger        *zap.Logger
}

// NewService wires the messaging core. The write strategy is decided
// here, once, from the store's transaction capability, not per request.
func NewService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	employees repository.EmployeeRepository,
	resolver *identity.Resolver,
	tx TxRunner,
	logger *zap.Logger,
) *Service {
	strategy := StrategyBestEffort
	if tx.SupportsTransactions() {
		strategy = StrategyAtomic
	}
	logger.Info("message write strategy selected", zap.String("strategy", strategy.String()))

	return &Service{
		conversations: conversations,
		messages:      messages,
		users:         users,
		projects:      projects,
		employees:     employees,
		resolver:      resolver,
		tx:            tx,
		strategy:      strategy,
		logger:        logger,
	}
}

// Strategy exposes the selected write strategy (used by tests and the
// health endpoint).
func (s *Service) Strategy() WriteStrategy { return s.strategy }

// ListConversations returns every conversation the caller belongs to,
// newest activity first, enriched with participant summaries, the last
// message, and the caller's unread count.
func (s *Service) ListConversations(ctx context.Context, caller *models.User) ([]models.ConversationView, error) {
	convos, err := s.conversations.ListByParticipant(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Store("list conversations", err)
	}

	convoIDs := make([]bson.ObjectID, 0, len(convos))
	participantIDs := make([]bson.ObjectID, 0)
	lastMessageIDs := make([]bson.ObjectID, 0)
	seen := make(map[bson.ObjectID]bool)
	for _, c := range convos {
		convoIDs = append(convoIDs, c.ID)
		for _, p := range c.Participants {
			if !seen[p] {
				seen[p] = true
				participantIDs = append(participantIDs, p)
			}
		}
		if c.LastMessageID != nil {
			lastMessageIDs = append(lastMessageIDs, *c.LastMessageID)
		}
	}

	unread, err := s.messages.UnreadCounts(ctx, convoIDs, caller.ID)
	if err != nil {
		return nil, apperr.Store("count unread messages", err)
	}

	summaries, err := s.userSummaryMap(ctx, participantIDs)
	if err != nil {
		return nil, err
	}

	lastMessages := make(map[bson.ObjectID]models.Message)
	if len(lastMessageIDs) > 0 {
		msgs, err := s.messages.GetByIDs(ctx, lastMessageIDs)
		if err != nil {
			return nil, apperr.Store("load last messages", err)
		}
		for _, m := range msgs {
			lastMessages[m.ID] = m
		}
	}

	views := make([]models.ConversationView, 0, len(convos))
	for _, c := range convos {
		view := models.ConversationView{
			Conversation:     c,
			ParticipantUsers: pickSummaries(summaries, c.Participants),
			UnreadCount:      unread[c.ID],
		}
		if c.LastMessageID != nil {
			if m, ok := lastMessages[*c.LastMessageID]; ok {
				view.LastMessage = &m
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// GetOrCreateDirect finds or creates a non-project conversation. The
// caller is always included. Dedup applies only to 1:1 threads (exact
// two-member set match); larger groups are always created fresh.
// Returns created=false when an existing conversation was returned.
func (s *Service) GetOrCreateDirect(ctx context.Context, caller *models.User, participantIDs []bson.ObjectID) (*models.ConversationView, bool, error) {
	if caller.Role == models.RoleClient {
		return nil, false, apperr.Validation("projectId is required for client conversations")
	}
	if len(participantIDs) == 0 {
		return nil, false, apperr.Validation("at least one participant is required")
	}

	members := dedupeIDs(append(participantIDs, caller.ID))

	if len(members) == 2 {
		existing, err := s.conversations.FindDirect(ctx, members)
		if err != nil {
			return nil, false, apperr.Store("find conversation", err)
		}
		if existing != nil {
			view, err := s.buildView(ctx, existing, caller)
			return view, false, err
		}
	}

	conv := &models.Conversation{
		Participants: members,
		IsGroup:      len(members) > 2,
		CreatedBy:    caller.ID,
		Admins:       []bson.ObjectID{caller.ID},
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, false, apperr.Store("create conversation", err)
	}

	view, err := s.buildView(ctx, conv, caller)
	return view, true, err
}

// GetOrCreateProjectConversation finds or creates the conversation tied
// to (project, caller). The initial participant set is the caller, the
// project's assigned employee mapped to a User, and all active admins,
// so a client always has an admin on the other end.
//
// Known race: two concurrent first requests can both miss the existence
// check and create two conversations for the same (project, user) pair.
// There is no unique index backing this lookup; fixing it means a
// compound constraint and create-on-conflict semantics at the store.
func (s *Service) GetOrCreateProjectConversation(ctx context.Context, caller *models.User, projectID bson.ObjectID) (*models.ConversationView, bool, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, false, apperr.Store("load project", err)
	}
	if project == nil {
		return nil, false, apperr.NotFound("project not found")
	}

	if caller.Role == models.RoleClient {
		if caller.ClientID == nil || project.ClientID == nil || *caller.ClientID != *project.ClientID {
			return nil, false, apperr.Forbidden("project does not belong to client")
		}
	}

	existing, err := s.conversations.FindByProjectAndParticipant(ctx, projectID, caller.ID)
	if err != nil {
		return nil, false, apperr.Store("find project conversation", err)
	}
	if existing != nil {
		view, err := s.buildView(ctx, existing, caller)
		return view, false, err
	}

	members := []bson.ObjectID{caller.ID}

	if project.EmployeeID != nil {
		emp, err := s.employees.GetByID(ctx, *project.EmployeeID)
		if err != nil {
			return nil, false, apperr.Store("load assigned employee", err)
		}
		if emp != nil {
			staffUser, err := s.resolver.EnsureUserForEmployee(ctx, emp)
			if err != nil {
				return nil, false, err
			}
			if staffUser != nil {
				members = append(members, staffUser.ID)
			}
		}
	}

	admins, err := s.users.ListActiveAdmins(ctx)
	if err != nil {
		return nil, false, apperr.Store("list admins", err)
	}
	adminIDs := make([]bson.ObjectID, 0, len(admins))
	for _, a := range admins {
		adminIDs = append(adminIDs, a.ID)
		members = append(members, a.ID)
	}
	members = dedupeIDs(members)

	groupName := strings.TrimSpace(project.Title)
	if groupName == "" {
		groupName = "Project Chat"
	}

	conv := &models.Conversation{
		ProjectID:    &projectID,
		Participants: members,
		IsGroup:      len(members) > 2,
		GroupName:    groupName,
		CreatedBy:    caller.ID,
		Admins:       adminIDs,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, false, apperr.Store("create project conversation", err)
	}

	view, err := s.buildView(ctx, conv, caller)
	return view, true, err
}

// ListMessages returns a page of messages in ascending chronological
// order and, as a side effect, marks every foreign message in the
// conversation read by the caller (not just the fetched page).
func (s *Service) ListMessages(ctx context.Context, caller *models.User, conversationID bson.ObjectID, before *bson.ObjectID, limit int) ([]models.MessageView, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if _, err := s.requireParticipant(ctx, conversationID, caller.ID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID, before, limit)
	if err != nil {
		return nil, apperr.Store("list messages", err)
	}

	if _, err := s.messages.MarkConversationRead(ctx, conversationID, caller.ID); err != nil {
		return nil, apperr.Store("mark messages read", err)
	}

	// Fetched newest-first for the limit to take the latest page;
	// clients want ascending order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	senderIDs := make([]bson.ObjectID, 0, len(msgs))
	seen := make(map[bson.ObjectID]bool)
	for _, m := range msgs {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	summaries, err := s.userSummaryMap(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := summaries[m.SenderID]
		if !ok {
			sender = models.UserSummary{ID: m.SenderID}
		}
		views = append(views, models.MessageView{Message: m, Sender: sender})
	}
	return views, nil
}

// MarkMessagesRead adds the caller to readBy for each given id. Messages
// the caller authored and ids that do not exist are silent no-ops.
func (s *Service) MarkMessagesRead(ctx context.Context, caller *models.User, messageIDs []bson.ObjectID) (int64, error) {
	n, err := s.messages.MarkRead(ctx, messageIDs, caller.ID)
	if err != nil {
		return 0, apperr.Store("mark messages read", err)
	}
	return n, nil
}

// requireParticipant is the access check in front of every message read
// or write: 404 for a missing conversation, 403 for a non-participant.
func (s *Service) requireParticipant(ctx context.Context, conversationID, userID bson.ObjectID) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, apperr.Store("load conversation", err)
	}
	if conv == nil {
		return nil, apperr.NotFound("conversation not found")
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.Forbidden("not a participant in this conversation")
	}
	return conv, nil
}

func (s *Service) buildView(ctx context.Context, conv *models.Conversation, caller *models.User) (*models.ConversationView, error) {
	summaries, err := s.userSummaryMap(ctx, conv.Participants)
	if err != nil {
		return nil, err
	}

	view := &models.ConversationView{
		Conversation:     *conv,
		ParticipantUsers: pickSummaries(summaries, conv.Participants),
	}

	if conv.LastMessageID != nil {
		last, err := s.messages.GetByID(ctx, *conv.LastMessageID)
		if err != nil {
			return nil, apperr.Store("load last message", err)
		}
		view.LastMessage = last
	}

	counts, err := s.messages.UnreadCounts(ctx, []bson.ObjectID{conv.ID}, caller.ID)
	if err != nil {
		return nil, apperr.Store("count unread messages", err)
	}
	view.UnreadCount = counts[conv.ID]
	return view, nil
}

func (s *Service) userSummaryMap(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]models.UserSummary, error) {
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, apperr.Store("load user summaries", err)
	}
	out := make(map[bson.ObjectID]models.UserSummary, len(summaries))
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}

// pickSummaries keeps the participant order of the conversation document.
func pickSummaries(m map[bson.ObjectID]models.UserSummary, ids []bson.ObjectID) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := m[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func dedupeIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
