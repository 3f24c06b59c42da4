package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type ProjectHandler struct {
	projects repository.ProjectRepository
	logger   *zap.Logger
}

func NewProjectHandler(projects repository.ProjectRepository, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// List handles GET /v1/projects?q=<query>
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Get handles GET /v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

type projectRequest struct {
	Title       string     `json:"title"`
	ClientID    string     `json:"clientId"`
	Client      string     `json:"client"`
	EmployeeID  string     `json:"employeeId"`
	Price       *float64   `json:"price"`
	Start       *time.Time `json:"start"`
	Deadline    *time.Time `json:"deadline"`
	Status      *string    `json:"status"`
	Description *string    `json:"description"`
	Labels      *string    `json:"labels"`
	Progress    *int       `json:"progress"`
	Members     []string   `json:"members"`
}

// Create handles POST /v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	project := &models.Project{
		Title:    req.Title,
		Client:   req.Client,
		Status:   "open",
		Members:  req.Members,
		Progress: 0,
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Labels != nil {
		project.Labels = *req.Labels
	}
	if req.Progress != nil {
		project.Progress = *req.Progress
	}
	if req.Price != nil {
		project.Price = *req.Price
	}
	project.Start = req.Start
	project.Deadline = req.Deadline

	if req.ClientID != "" {
		id, err := bson.ObjectIDFromHex(req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clientId"})
			return
		}
		project.ClientID = &id
	}
	if req.EmployeeID != "" {
		id, err := bson.ObjectIDFromHex(req.EmployeeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return
		}
		project.EmployeeID = &id
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Update handles PATCH /v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := repository.ProjectPatch{
		Status:      req.Status,
		Description: req.Description,
		Labels:      req.Labels,
		Progress:    req.Progress,
		Price:       req.Price,
		Start:       req.Start,
		Deadline:    req.Deadline,
		Members:     req.Members,
	}
	if req.Title != "" {
		patch.Title = &req.Title
	}
	if req.EmployeeID != "" {
		empID, err := bson.ObjectIDFromHex(req.EmployeeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return
		}
		patch.EmployeeID = &empID
	}

	project, err := h.projects.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}
