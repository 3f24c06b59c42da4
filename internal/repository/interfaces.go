package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/agencydesk/agencydesk/internal/models"
)

// Every method takes context.Context first: all of these hit the store,
// and a cancelled request should cancel its queries. Lookups return
// (nil, nil) when the document is absent; callers translate that to a
// NotFound at the layer that knows what was being looked for.

// UserRepository handles identity records.
type UserRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error)

	// GetByEmail looks a user up by exact email. Emails are stored
	// lowercased, so callers normalize before calling.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// EnsureStaffByEmail is the atomic upsert behind employee→user
	// resolution: on first insert it seeds role=staff, status=active,
	// username=email; on every call it overwrites name and avatar.
	// Safe to race: the unique email index makes the upsert converge
	// on one document.
	EnsureStaffByEmail(ctx context.Context, email, name, avatar string) (*models.User, error)

	// ListActiveAdmins returns users with role=admin and status=active.
	ListActiveAdmins(ctx context.Context) ([]models.User, error)

	// List returns all users, newest first (admin screens).
	List(ctx context.Context) ([]models.User, error)

	UpdateAdminFields(ctx context.Context, id bson.ObjectID, patch AdminUserPatch) (*models.User, error)

	// Summaries resolves display fields for a set of user ids. Missing
	// ids are skipped, not errors.
	Summaries(ctx context.Context, ids []bson.ObjectID) ([]models.UserSummary, error)
}

// AdminUserPatch carries the fields an admin may change on a user.
// Nil pointers mean "leave as is".
type AdminUserPatch struct {
	Role        *string
	Status      *string
	Permissions []string
}

// EmployeeRepository handles HR records.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Employee, error)
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)

	// Search matches query against name, email, department and role
	// (case-insensitive), newest first, bounded by limit. An empty
	// query returns the newest employees.
	Search(ctx context.Context, query string, limit int) ([]models.Employee, error)

	List(ctx context.Context) ([]models.Employee, error)
	Create(ctx context.Context, e *models.Employee) error
}

// ConversationRepository handles messaging threads.
type ConversationRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Conversation, error)

	// ListByParticipant returns every conversation the user belongs to,
	// most recently updated first.
	ListByParticipant(ctx context.Context, userID bson.ObjectID) ([]models.Conversation, error)

	// FindDirect finds a conversation whose participant set matches
	// exactly (same members, same size). Used to dedup 1:1 threads.
	FindDirect(ctx context.Context, participants []bson.ObjectID) (*models.Conversation, error)

	// FindByProjectAndParticipant finds the project-scoped conversation
	// the user already belongs to, if any.
	FindByProjectAndParticipant(ctx context.Context, projectID, userID bson.ObjectID) (*models.Conversation, error)

	// Create inserts the conversation and fills ID and timestamps.
	Create(ctx context.Context, c *models.Conversation) error

	// SetLastMessage advances the lastMessage pointer, adds the sender
	// to participants if absent, and bumps updatedAt. Single-document
	// update, atomic on the store side.
	SetLastMessage(ctx context.Context, conversationID, messageID, senderID bson.ObjectID) error
}

// MessageRepository handles chat message persistence.
type MessageRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Message, error)

	// GetByIDs batch-loads messages; missing ids are skipped.
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]models.Message, error)

	// Insert persists the message and fills ID and timestamps.
	Insert(ctx context.Context, m *models.Message) error

	// ListByConversation returns messages newest first. A non-nil
	// before cursor restricts to messages with _id strictly below it.
	ListByConversation(ctx context.Context, conversationID bson.ObjectID, before *bson.ObjectID, limit int) ([]models.Message, error)

	// UnreadCounts returns, per conversation, how many messages were
	// neither sent by userID nor read by them.
	UnreadCounts(ctx context.Context, conversationIDs []bson.ObjectID, userID bson.ObjectID) (map[bson.ObjectID]int64, error)

	// MarkConversationRead adds userID to readBy on every message in
	// the conversation they did not author and have not read. Returns
	// the number of messages touched.
	MarkConversationRead(ctx context.Context, conversationID, userID bson.ObjectID) (int64, error)

	// MarkRead does the same for an explicit id list. Unknown ids and
	// the caller's own messages are silent no-ops.
	MarkRead(ctx context.Context, messageIDs []bson.ObjectID, userID bson.ObjectID) (int64, error)
}

// ProjectRepository is the project read/write accessor. The conversation
// manager only ever reads from it.
type ProjectRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Project, error)
	List(ctx context.Context, query string) ([]models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, id bson.ObjectID, patch ProjectPatch) (*models.Project, error)
}

type ProjectPatch struct {
	Title       *string
	Status      *string
	Description *string
	Labels      *string
	Progress    *int
	Price       *float64
	Start       *time.Time
	Deadline    *time.Time
	EmployeeID  *bson.ObjectID
	Members     []string
}

type AnnouncementRepository interface {
	List(ctx context.Context, query string, active *bool) ([]models.Announcement, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Announcement, error)
	Create(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, id bson.ObjectID, patch AnnouncementPatch) (*models.Announcement, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type AnnouncementPatch struct {
	Title     *string
	Message   *string
	StartDate *time.Time
	EndDate   *time.Time
	IsActive  *bool
	ShareWith *models.ShareWith
}

type OrderRepository interface {
	List(ctx context.Context, query string, clientID *bson.ObjectID) ([]models.Order, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, id bson.ObjectID, patch OrderPatch) (*models.Order, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type OrderPatch struct {
	Client    *string
	ClientID  *bson.ObjectID
	Status    *string
	Note      *string
	OrderDate *time.Time
	// Items replaces the line set when non-nil; Amount is recomputed by
	// the handler alongside it.
	Items  []models.OrderItem
	Amount *float64
}

type ItemRepository interface {
	List(ctx context.Context, query, category string) ([]models.Item, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Item, error)
	Create(ctx context.Context, i *models.Item) error
	Update(ctx context.Context, id bson.ObjectID, patch ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type ItemPatch struct {
	Title              *string
	Description        *string
	Category           *string
	Unit               *string
	Image              *string
	Rate               *float64
	ShowInClientPortal *bool
}

type TicketRepository interface {
	List(ctx context.Context, query, status string) ([]models.Ticket, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, id bson.ObjectID, patch TicketPatch) (*models.Ticket, error)

	// AppendMessage pushes a discussion entry and bumps lastActivity.
	AppendMessage(ctx context.Context, id bson.ObjectID, msg models.TicketMessage) (*models.Ticket, error)

	// NextTicketNo increments and returns the ticket counter.
	NextTicketNo(ctx context.Context) (int64, error)
}

type TicketPatch struct {
	Title       *string
	Description *string
	Type        *string
	AssignedTo  *string
	Status      *string
	Labels      []string
}

type LeaveRepository interface {
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Leave, error)

	// List filters by query against name and type. A non-nil employeeID
	// restricts to that employee's applications (staff scoping).
	List(ctx context.Context, query string, employeeID *bson.ObjectID) ([]models.Leave, error)

	Create(ctx context.Context, l *models.Leave) error
	Update(ctx context.Context, id bson.ObjectID, patch LeavePatch) (*models.Leave, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type LeavePatch struct {
	Type      *string
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	Status    *string
}

// LabelRepository backs one label catalog (tickets, tasks or notes);
// each catalog is a separate store instance over its own collection.
type LabelRepository interface {
	List(ctx context.Context) ([]models.Label, error)
	Create(ctx context.Context, l *models.Label) error
	Update(ctx context.Context, id bson.ObjectID, patch LabelPatch) (*models.Label, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type LabelPatch struct {
	Name  *string
	Color *string
}

type AttendanceRepository interface {
	// OpenEntry returns the employee's entry within [from, to) that has
	// no clock-out yet.
	OpenEntry(ctx context.Context, employeeID bson.ObjectID, from, to time.Time) (*models.Attendance, error)

	Create(ctx context.Context, a *models.Attendance) error

	// CloseEntry stamps the open entry's clock-out and returns it.
	CloseEntry(ctx context.Context, employeeID bson.ObjectID, from, to, at time.Time) (*models.Attendance, error)

	// ListRange returns all entries with date within [from, to).
	ListRange(ctx context.Context, from, to time.Time) ([]models.Attendance, error)
}
