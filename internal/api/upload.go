package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
)

// maxUploadSize bounds a single attachment at 25 MiB.
const maxUploadSize = 25 << 20

type UploadHandler struct {
	dir    string
	logger *zap.Logger
}

func NewUploadHandler(dir string, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{dir: dir, logger: logger}
}

// Upload handles POST /v1/uploads (multipart, field "file"). The stored
// name is a fresh UUID plus the original extension; the original name is
// only echoed back for display. The response body is an Attachment ready
// to embed in a message.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 25MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext
	dst := filepath.Join(h.dir, name)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.logger.Error("failed to store upload",
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	c.JSON(http.StatusCreated, models.Attachment{
		URL:  "/uploads/" + name,
		Name: file.Filename,
		Type: contentType,
		Size: file.Size,
	})
}
