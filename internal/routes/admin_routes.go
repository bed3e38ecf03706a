package routes

import (
	"github.com/gin-gonic/gin"

	"visit_tracker/internal/middleware"
	"visit_tracker/internal/models"
)

func AdminRoutes(api *gin.RouterGroup, deps Dependencies) {
	admin := api.Group("")
	admin.Use(middleware.RequireAuth(deps.Tokens), middleware.RequireRoles(models.RoleSuperAdmin))
	{
		admin.GET("/drivers/:id/visits", deps.Drivers.ListVisits)
	}
}
