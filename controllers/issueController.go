package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/middlewares"
	"civicpulse-be/models"
	"civicpulse-be/services"
	"civicpulse-be/stores"
)

type IssueController struct {
	issues     stores.IssueStore
	users      stores.UserStore
	workflow   *services.StatusWorkflow
	resolution *services.ResolutionGateway
	log        *zap.SugaredLogger
}

func NewIssueController(issues stores.IssueStore, users stores.UserStore, workflow *services.StatusWorkflow, resolution *services.ResolutionGateway, log *zap.SugaredLogger) *IssueController {
	return &IssueController{
		issues:     issues,
		users:      users,
		workflow:   workflow,
		resolution: resolution,
		log:        log,
	}
}

// CreateIssue handles the creation of a new issue report
func (h *IssueController) CreateIssue(c *gin.Context) {
	principal, ok := middlewares.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reporterID, err := primitive.ObjectIDFromHex(principal.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Title       string   `json:"title" binding:"required,max=200"`
		Description string   `json:"description" binding:"required,max=2000"`
		Lat         *float64 `json:"lat" binding:"required"`
		Lng         *float64 `json:"lng" binding:"required"`
		Images      []string `json:"images"`
		Area        string   `json:"area"`
		Category    *string  `json:"category,omitempty"`
		Priority    *string  `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.OtherCategory
	if input.Category != nil {
		if !models.ValidIssueCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		category = models.IssueCategory(*input.Category)
	}

	priority := models.Medium
	if input.Priority != nil {
		if !models.ValidIssuePriority(*input.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		priority = models.IssuePriority(*input.Priority)
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	issue := models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Location:    models.Location{Lat: *input.Lat, Lng: *input.Lng},
		Images:      images,
		Reporter:    reporterID,
		Status:      models.Reported,
		Area:        input.Area,
		Category:    category,
		Priority:    priority,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.issues.Insert(c.Request.Context(), &issue); err != nil {
		h.log.Errorw("create issue", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues handles retrieving all issues with filtering and pagination
func (h *IssueController) GetAllIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := stores.IssueFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Area:     c.Query("area"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", "newest"),
		Page:     page,
		Limit:    limit,
	}

	issues, totalCount, err := h.issues.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Errorw("list issues", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	if limit < 1 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetIssue retrieves an issue by its ID
func (h *IssueController) GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	issue, err := h.issues.GetByID(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	reporterInfo := gin.H{"id": issue.Reporter}
	if reporter, rerr := h.users.GetByID(c.Request.Context(), issue.Reporter); rerr == nil {
		reporterInfo["username"] = reporter.Username
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                      issue.ID,
		"title":                   issue.Title,
		"description":             issue.Description,
		"location":                issue.Location,
		"images":                  issue.Images,
		"status":                  issue.Status,
		"area":                    issue.Area,
		"category":                issue.Category,
		"priority":                issue.Priority,
		"assignedDepartment":      issue.AssignedDepartment,
		"estimatedResolutionTime": issue.EstimatedResolutionTime,
		"resolutionNotes":         issue.ResolutionNotes,
		"reporter":                reporterInfo,
		"createdAt":               issue.CreatedAt,
		"updatedAt":               issue.UpdatedAt,
	})
}

// GetMyIssues retrieves all issues reported by the authenticated user
func (h *IssueController) GetMyIssues(c *gin.Context) {
	principal, ok := middlewares.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	reporterID, err := primitive.ObjectIDFromHex(principal.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	issues, err := h.issues.ListByReporter(c.Request.Context(), reporterID)
	if err != nil {
		h.log.Errorw("list issues by reporter", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	c.JSON(http.StatusOK, issues)
}

// GetGovernmentIssues lists unresolved issues with reporter contact info
// for the government triage view
func (h *IssueController) GetGovernmentIssues(c *gin.Context) {
	issues, err := h.issues.ListUnresolved(c.Request.Context())
	if err != nil {
		h.log.Errorw("list unresolved issues", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	type issueWithReporter struct {
		models.Issue
		Reporter map[string]interface{} `json:"reporter"`
	}

	enriched := make([]issueWithReporter, 0, len(issues))
	for _, issue := range issues {
		reporterInfo := map[string]interface{}{
			"id": issue.Reporter,
		}
		if reporter, rerr := h.users.GetByID(c.Request.Context(), issue.Reporter); rerr == nil {
			reporterInfo["username"] = reporter.Username
			reporterInfo["email"] = reporter.Email
		}
		enriched = append(enriched, issueWithReporter{Issue: issue, Reporter: reporterInfo})
	}

	c.JSON(http.StatusOK, enriched)
}

// UpdateIssueStatus moves an issue to a new status with optional triage
// fields. Resolution goes through VerifyAndResolveIssue instead.
func (h *IssueController) UpdateIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Status                  string  `json:"status" binding:"required"`
		AssignedDepartment      *string `json:"assignedDepartment,omitempty"`
		EstimatedResolutionTime *string `json:"estimatedResolutionTime,omitempty"`
		ResolutionNotes         *string `json:"resolutionNotes,omitempty"`
		Priority                *string `json:"priority,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	extras := services.StatusExtras{
		AssignedDepartment:      input.AssignedDepartment,
		EstimatedResolutionTime: input.EstimatedResolutionTime,
		ResolutionNotes:         input.ResolutionNotes,
	}
	if input.Priority != nil {
		priority := models.IssuePriority(*input.Priority)
		extras.Priority = &priority
	}

	issue, err := h.workflow.UpdateStatus(c.Request.Context(), issueID, models.IssueStatus(input.Status), extras)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// VerifyAndResolveIssue runs the verification-gated resolution path
func (h *IssueController) VerifyAndResolveIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		AfterImage string `json:"afterImage" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.resolution.VerifyAndResolve(c.Request.Context(), issueID, input.AfterImage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIssueAnalytics returns analytical data about issues
func (h *IssueController) GetIssueAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	issuesByCategory, err := h.issues.CountByCategory(ctx)
	if err != nil {
		h.log.Errorw("category analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category analytics"})
		return
	}

	issuesByStatus, err := h.issues.CountByStatus(ctx)
	if err != nil {
		h.log.Errorw("status analytics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status analytics"})
		return
	}

	var totalIssues, openIssues int64
	for _, bucket := range issuesByStatus {
		totalIssues += bucket.Count
		if bucket.Status != string(models.Resolved) {
			openIssues += bucket.Count
		}
	}

	// Get last 7 days data
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := h.issues.CountCreatedBetween(ctx, date, nextDate)
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByCategory": issuesByCategory,
		"issuesByStatus":   issuesByStatus,
		"last7Days":        last7Days,
		"totalIssues":      totalIssues,
		"openIssues":       openIssues,
	})
}

// RecentIssues returns the most recent issues for the map view
func (h *IssueController) RecentIssues(c *gin.Context) {
	issues, err := h.issues.ListRecent(c.Request.Context(), 19)
	if err != nil {
		h.log.Errorw("recent issues", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent issues"})
		return
	}

	type issuePin struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Lat       float64   `json:"lat"`
		Lng       float64   `json:"lng"`
		Area      string    `json:"area,omitempty"`
		Category  string    `json:"category,omitempty"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"createdAt,omitempty"`
	}

	pins := make([]issuePin, 0, len(issues))
	for _, issue := range issues {
		pins = append(pins, issuePin{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Lat:       issue.Location.Lat,
			Lng:       issue.Location.Lng,
			Area:      issue.Area,
			Category:  string(issue.Category),
			Status:    string(issue.Status),
			CreatedAt: issue.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, pins)
}
