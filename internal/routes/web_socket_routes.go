package routes

import (
	"github.com/gin-gonic/gin"

	"visit_tracker/internal/middleware"
	"visit_tracker/internal/models"
)

func WebSocketRoutes(r *gin.Engine, deps Dependencies) {
	wsRoutes := r.Group("/ws")
	wsRoutes.Use(middleware.RequireAuth(deps.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		wsRoutes.GET("/visits", deps.Feed.HandleVisitFeed)
	}
}
