package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"

	"github.com/gin-gonic/gin"
)

// InfraRoutes sets up the infrastructure project routes. All writes are
// government-only.
func InfraRoutes(r *gin.Engine, h *controllers.InfraController) {
	infra := r.Group("/api/infrastructure")
	{
		infra.POST("", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.CreateProject)
		infra.GET("", h.GetAllProjects)
		infra.GET("/:id", h.GetProject)
		infra.PUT("/:id", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.UpdateProject)
		infra.DELETE("/:id", middlewares.AuthMiddleware(), middlewares.RequireRole(models.Government), h.DeleteProject)
	}
}
