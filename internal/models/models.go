package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role values carried by User.Role.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
)

// Status values carried by User.Status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an identity record. Email is the globally unique join key:
// Employee records are reconciled to Users by lowercased/trimmed email,
// so two users can never share one. Users are created by admin action or
// synthesized on demand from an Employee (see internal/identity).
type User struct {
	ID           bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string         `bson:"name" json:"name"`
	Username     string         `bson:"username,omitempty" json:"username,omitempty"`
	Email        string         `bson:"email" json:"email"`
	PasswordHash string         `bson:"passwordHash,omitempty" json:"-"`
	Role         string         `bson:"role" json:"role"`
	Status       string         `bson:"status" json:"status"`
	Avatar       string         `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Permissions  []string       `bson:"permissions,omitempty" json:"permissions,omitempty"`
	ClientID     *bson.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	CreatedBy    string         `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the denormalized slice of a User attached to
// conversations and messages for display.
type UserSummary struct {
	ID     bson.ObjectID `bson:"_id" json:"id"`
	Name   string        `bson:"name" json:"name"`
	Email  string        `bson:"email" json:"email"`
	Avatar string        `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role   string        `bson:"role,omitempty" json:"role,omitempty"`
}

// Employee is an HR record with a lifecycle independent from User. It is
// not a messaging participant itself; it must be mapped to a User (by
// email) before it can appear in a conversation.
type Employee struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string        `bson:"name,omitempty" json:"name,omitempty"`
	FirstName  string        `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName   string        `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Initials   string        `bson:"initials,omitempty" json:"initials,omitempty"`
	Email      string        `bson:"email" json:"email"`
	Department string        `bson:"department,omitempty" json:"department,omitempty"`
	Role       string        `bson:"role,omitempty" json:"role,omitempty"`
	Avatar     string        `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName prefers the explicit name and falls back to
// "FirstName LastName".
func (e *Employee) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	name := e.FirstName
	if e.LastName != "" {
		if name != "" {
			name += " "
		}
		name += e.LastName
	}
	return name
}

// Conversation is a messaging thread. A non-nil ProjectID marks it
// project-scoped. Participants is treated as a set semantically (growth
// is add-if-absent) though the store does not enforce uniqueness with an
// index. IsGroup is fixed at creation time and is not recomputed when
// participants are added later.
type Conversation struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProjectID     *bson.ObjectID  `bson:"projectId,omitempty" json:"projectId,omitempty"`
	Participants  []bson.ObjectID `bson:"participants" json:"participants"`
	LastMessageID *bson.ObjectID  `bson:"lastMessage,omitempty" json:"lastMessageId,omitempty"`
	IsGroup       bool            `bson:"isGroup" json:"isGroup"`
	GroupName     string          `bson:"groupName,omitempty" json:"groupName,omitempty"`
	GroupPhoto    string          `bson:"groupPhoto,omitempty" json:"groupPhoto,omitempty"`
	CreatedBy     bson.ObjectID   `bson:"createdBy" json:"createdBy"`
	Admins        []bson.ObjectID `bson:"admins,omitempty" json:"admins,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether id is in the participant set.
func (c *Conversation) HasParticipant(id bson.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Attachment is a file reference embedded in a message.
type Attachment struct {
	URL  string `bson:"url" json:"url"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
	Type string `bson:"type,omitempty" json:"type,omitempty"`
	Size int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// Message belongs to exactly one conversation. Invariant: Content is
// non-empty OR Attachments is non-empty. ReadBy only ever grows; the
// sender is seeded into it on insert so their own messages are never
// counted unread. ObjectIDs are time-ordered, so _id doubles as the
// pagination cursor.
type Message struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	ConversationID bson.ObjectID   `bson:"conversationId" json:"conversationId"`
	SenderID       bson.ObjectID   `bson:"sender" json:"senderId"`
	Content        string          `bson:"content,omitempty" json:"content,omitempty"`
	Attachments    []Attachment    `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ReadBy         []bson.ObjectID `bson:"readBy" json:"readBy"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ConversationView is a conversation enriched for the client: resolved
// participant summaries, the last message, and the caller's unread count.
type ConversationView struct {
	Conversation
	ParticipantUsers []UserSummary `json:"participantUsers"`
	LastMessage      *Message      `json:"lastMessage,omitempty"`
	UnreadCount      int64         `json:"unreadCount"`
}

// MessageView is a message with its sender resolved for display.
type MessageView struct {
	Message
	Sender UserSummary `json:"sender"`
}

// Project is a unit of client work. ClientID ties it to a client tenant;
// EmployeeID is the assigned staff member (an Employee, not a User).
type Project struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	EmployeeID  *bson.ObjectID `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Title       string         `bson:"title" json:"title"`
	ClientID    *bson.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Client      string         `bson:"client,omitempty" json:"client,omitempty"`
	Price       float64        `bson:"price" json:"price"`
	Start       *time.Time     `bson:"start,omitempty" json:"start,omitempty"`
	Deadline    *time.Time     `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Status      string         `bson:"status" json:"status"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Labels      string         `bson:"labels,omitempty" json:"labels,omitempty"`
	Progress    int            `bson:"progress" json:"progress"`
	Members     []string       `bson:"members,omitempty" json:"members,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// ShareWith flags which audiences see an announcement.
type ShareWith struct {
	TeamMembers bool `bson:"teamMembers" json:"teamMembers"`
	Clients     bool `bson:"clients" json:"clients"`
	Leads       bool `bson:"leads" json:"leads"`
}

type Announcement struct {
	ID            bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title         string         `bson:"title" json:"title"`
	Message       string         `bson:"message,omitempty" json:"message,omitempty"`
	ShareWith     ShareWith      `bson:"shareWith" json:"shareWith"`
	StartDate     *time.Time     `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate       *time.Time     `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedBy     *bson.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedByName string         `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	IsActive      bool           `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem is a line on an order. Total is always Quantity*Rate,
// recomputed server-side on every write.
type OrderItem struct {
	ItemID      *bson.ObjectID `bson:"itemId,omitempty" json:"itemId,omitempty"`
	Name        string         `bson:"name,omitempty" json:"name,omitempty"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    float64        `bson:"quantity" json:"quantity"`
	Unit        string         `bson:"unit,omitempty" json:"unit,omitempty"`
	Rate        float64        `bson:"rate" json:"rate"`
	Total       float64        `bson:"total" json:"total"`
}

type Order struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number    string         `bson:"number,omitempty" json:"number,omitempty"`
	ClientID  *bson.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Client    string         `bson:"client,omitempty" json:"client,omitempty"`
	Items     []OrderItem    `bson:"items" json:"items"`
	Amount    float64        `bson:"amount" json:"amount"`
	Status    string         `bson:"status" json:"status"`
	OrderDate *time.Time     `bson:"orderDate,omitempty" json:"orderDate,omitempty"`
	Note      string         `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Item is a catalog entry sold on orders and invoices.
type Item struct {
	ID                 bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string        `bson:"title" json:"title"`
	Description        string        `bson:"description,omitempty" json:"description,omitempty"`
	Category           string        `bson:"category" json:"category"`
	Unit               string        `bson:"unit,omitempty" json:"unit,omitempty"`
	Rate               float64       `bson:"rate" json:"rate"`
	ShowInClientPortal bool          `bson:"showInClientPortal" json:"showInClientPortal"`
	Image              string        `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// TicketMessage is a discussion entry embedded in a ticket. Unlike chat
// messages these are append-only strings, not standalone documents.
type TicketMessage struct {
	Text      string    `bson:"text" json:"text"`
	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Ticket struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	TicketNo     int64           `bson:"ticketNo,omitempty" json:"ticketNo,omitempty"`
	ClientID     *bson.ObjectID  `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Client       string          `bson:"client,omitempty" json:"client,omitempty"`
	ProjectID    *bson.ObjectID  `bson:"projectId,omitempty" json:"projectId,omitempty"`
	Title        string          `bson:"title" json:"title"`
	Description  string          `bson:"description,omitempty" json:"description,omitempty"`
	RequestedBy  string          `bson:"requestedBy,omitempty" json:"requestedBy,omitempty"`
	Type         string          `bson:"type" json:"type"`
	Labels       []string        `bson:"labels,omitempty" json:"labels,omitempty"`
	AssignedTo   string          `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Status       string          `bson:"status" json:"status"`
	LastActivity *time.Time      `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
	Messages     []TicketMessage `bson:"messages" json:"messages"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Leave status values. Only admins move an application out of pending.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// Leave is a leave application filed by (or for) an employee. Name is
// denormalized from the employee record at apply time.
type Leave struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID bson.ObjectID `bson:"employeeId" json:"employeeId"`
	Name       string        `bson:"name,omitempty" json:"name,omitempty"`
	Type       string        `bson:"type" json:"type"`
	StartDate  *time.Time    `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate    *time.Time    `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Reason     string        `bson:"reason,omitempty" json:"reason,omitempty"`
	Status     string        `bson:"status" json:"status"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Label is a catalog entry for tagging tickets, tasks and notes. The
// three catalogs live in separate collections but share this shape;
// names are unique within a catalog.
type Label struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Color     string        `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Attendance is one clock-in, optionally closed by a clock-out, for one
// employee on one day. An entry with a nil ClockOut is an open shift.
type Attendance struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID bson.ObjectID `bson:"employeeId" json:"employeeId"`
	Name       string        `bson:"name,omitempty" json:"name,omitempty"`
	Date       time.Time     `bson:"date" json:"date"`
	ClockIn    time.Time     `bson:"clockIn" json:"clockIn"`
	ClockOut   *time.Time    `bson:"clockOut,omitempty" json:"clockOut,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}
