package routes

import (
	"github.com/gin-gonic/gin"

	"visit_tracker/internal/middleware"
	"visit_tracker/internal/models"
)

// DriverRoutes is the desk surface: any admin may record and look up visits.
func DriverRoutes(api *gin.RouterGroup, deps Dependencies) {
	desk := api.Group("")
	desk.Use(middleware.RequireAuth(deps.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		desk.POST("/visits", deps.Visits.RecordVisit)
		desk.GET("/drivers", deps.Drivers.ListDrivers)
		desk.GET("/drivers/search", deps.Drivers.SearchDriver)
	}
}
