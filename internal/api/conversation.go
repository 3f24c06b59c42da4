package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/chat"
	"github.com/agencydesk/agencydesk/internal/middleware"
)

type ConversationHandler struct {
	svc    *chat.Service
	logger *zap.Logger
}

func NewConversationHandler(svc *chat.Service, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{svc: svc, logger: logger}
}

// List handles GET /v1/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	views, err := h.svc.ListConversations(c.Request.Context(), caller)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

type createConversationRequest struct {
	ParticipantIDs []string `json:"participantIds"`
	ProjectID      string   `json:"projectId"`
}

// Create handles POST /v1/conversations (get-or-create). With projectId
// it takes the project-scoped path; otherwise a direct/group thread.
// 201 when a conversation was created, 200 when an existing one matched.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller := middleware.CurrentUser(c)

	if req.ProjectID != "" {
		projectID, err := bson.ObjectIDFromHex(req.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
			return
		}
		view, created, err := h.svc.GetOrCreateProjectConversation(c.Request.Context(), caller, projectID)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(statusFor(created), view)
		return
	}

	participantIDs := make([]bson.ObjectID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := bson.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id: " + raw})
			return
		}
		participantIDs = append(participantIDs, id)
	}

	view, created, err := h.svc.GetOrCreateDirect(c.Request.Context(), caller, participantIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(statusFor(created), view)
}

// Messages handles GET /v1/conversations/:id/messages?before=<id>&limit=50
//
// The before cursor is a message id; results come back oldest-to-newest.
// Fetching marks the whole conversation read for the caller.
func (h *ConversationHandler) Messages(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}
	caller := middleware.CurrentUser(c)

	var before *bson.ObjectID
	if b := c.Query("before"); b != "" {
		id, err := bson.ObjectIDFromHex(b)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'before' parameter"})
			return
		}
		before = &id
	}

	limit := chat.DefaultPageSize
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = n
	}

	views, err := h.svc.ListMessages(c.Request.Context(), caller, conversationID, before, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func statusFor(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
