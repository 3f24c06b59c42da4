package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/chat"
	"github.com/agencydesk/agencydesk/internal/middleware"
	"github.com/agencydesk/agencydesk/internal/models"
)

type MessageHandler struct {
	svc    *chat.Service
	logger *zap.Logger
}

func NewMessageHandler(svc *chat.Service, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

type sendMessageRequest struct {
	ConversationID string              `json:"conversationId" binding:"required"`
	Content        string              `json:"content"`
	Attachments    []models.Attachment `json:"attachments"`
}

// Create handles POST /v1/messages
func (h *MessageHandler) Create(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversationID, err := bson.ObjectIDFromHex(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversationId"})
		return
	}

	caller := middleware.CurrentUser(c)
	view, err := h.svc.SendMessage(c.Request.Context(), caller, conversationID, req.Content, req.Attachments)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type markReadRequest struct {
	MessageIDs []string `json:"messageIds"`
}

// MarkRead handles POST /v1/messages/read. Ids that do not parse or do
// not exist are skipped silently, matching the no-op contract for
// unknown ids.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MessageIDs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message IDs array is required"})
		return
	}

	ids := make([]bson.ObjectID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		if id, err := bson.ObjectIDFromHex(raw); err == nil {
			ids = append(ids, id)
		}
	}

	caller := middleware.CurrentUser(c)
	updated, err := h.svc.MarkMessagesRead(c.Request.Context(), caller, ids)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}
