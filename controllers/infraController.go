package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/middlewares"
	"civicpulse-be/models"
	"civicpulse-be/stores"
)

type InfraController struct {
	projects stores.InfrastructureStore
	log      *zap.SugaredLogger
}

func NewInfraController(projects stores.InfrastructureStore, log *zap.SugaredLogger) *InfraController {
	return &InfraController{projects: projects, log: log}
}

// CreateProject handles the creation of a new infrastructure project
func (h *InfraController) CreateProject(c *gin.Context) {
	principal, ok := middlewares.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	createdByID, err := primitive.ObjectIDFromHex(principal.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Name                string     `json:"name" binding:"required,max=200"`
		Type                string     `json:"type" binding:"required"`
		Description         string     `json:"description" binding:"required,max=2000"`
		Lat                 *float64   `json:"lat" binding:"required"`
		Lng                 *float64   `json:"lng" binding:"required"`
		Area                string     `json:"area" binding:"required,max=200"`
		Status              *string    `json:"status,omitempty"`
		Budget              *float64   `json:"budget,omitempty"`
		EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
		Contractor          string     `json:"contractor,omitempty"`
		Progress            *int       `json:"progress,omitempty"`
		Notes               string     `json:"notes,omitempty"`
		Images              []string   `json:"images"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidInfrastructureType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	status := models.Planned
	if input.Status != nil {
		if !models.ValidInfrastructureStatus(*input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		status = models.InfrastructureStatus(*input.Status)
	}

	progress := 0
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Progress must be between 0 and 100"})
			return
		}
		progress = *input.Progress
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	project := models.Infrastructure{
		Name:                input.Name,
		Type:                models.InfrastructureType(input.Type),
		Description:         input.Description,
		Location:            models.Location{Lat: *input.Lat, Lng: *input.Lng},
		Area:                input.Area,
		Status:              status,
		Budget:              input.Budget,
		EstimatedCompletion: input.EstimatedCompletion,
		Contractor:          input.Contractor,
		Progress:            progress,
		Notes:               input.Notes,
		Images:              images,
		CreatedBy:           createdByID,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := h.projects.Insert(c.Request.Context(), &project); err != nil {
		h.log.Errorw("create infrastructure project", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create infrastructure project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// GetAllProjects retrieves all infrastructure projects
func (h *InfraController) GetAllProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("list infrastructure projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve infrastructure projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject retrieves an infrastructure project by its ID
func (h *InfraController) GetProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject applies a partial update to an infrastructure project
func (h *InfraController) UpdateProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var input struct {
		Name                *string    `json:"name,omitempty"`
		Type                *string    `json:"type,omitempty"`
		Description         *string    `json:"description,omitempty"`
		Lat                 *float64   `json:"lat,omitempty"`
		Lng                 *float64   `json:"lng,omitempty"`
		Area                *string    `json:"area,omitempty"`
		Status              *string    `json:"status,omitempty"`
		Budget              *float64   `json:"budget,omitempty"`
		EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
		Contractor          *string    `json:"contractor,omitempty"`
		Progress            *int       `json:"progress,omitempty"`
		Notes               *string    `json:"notes,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := stores.InfrastructurePatch{
		Name:                input.Name,
		Description:         input.Description,
		Area:                input.Area,
		Budget:              input.Budget,
		EstimatedCompletion: input.EstimatedCompletion,
		Contractor:          input.Contractor,
		Notes:               input.Notes,
	}

	if input.Type != nil {
		if !models.ValidInfrastructureType(*input.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
			return
		}
		t := models.InfrastructureType(*input.Type)
		patch.Type = &t
	}
	if input.Status != nil {
		if !models.ValidInfrastructureStatus(*input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		s := models.InfrastructureStatus(*input.Status)
		patch.Status = &s
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Progress must be between 0 and 100"})
			return
		}
		patch.Progress = input.Progress
	}
	if input.Lat != nil && input.Lng != nil {
		patch.Location = &models.Location{Lat: *input.Lat, Lng: *input.Lng}
	}

	project, err := h.projects.Patch(c.Request.Context(), projectID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject removes an infrastructure project
func (h *InfraController) DeleteProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Infrastructure project deleted successfully"})
}
