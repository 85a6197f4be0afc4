package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes. Reads are open; writes require
// authentication, and status changes require the government role.
func IssueRoutes(r *gin.Engine, h *controllers.IssueController, rateLimiter gin.HandlerFunc) {
	issue := r.Group("/api/issues")
	{
		issue.POST("", middlewares.AuthMiddleware(), rateLimiter, h.CreateIssue)
		issue.GET("", h.GetAllIssues)
		issue.GET("/recent", h.RecentIssues)
		issue.GET("/mine", middlewares.AuthMiddleware(), h.GetMyIssues)
		issue.GET("/analytics", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.GetIssueAnalytics)
		issue.GET("/government", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.GetGovernmentIssues)
		issue.GET("/:id", h.GetIssue)
		issue.PUT("/:id/status", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.UpdateIssueStatus)
		issue.POST("/:id/resolve", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.VerifyAndResolveIssue)
	}
}
