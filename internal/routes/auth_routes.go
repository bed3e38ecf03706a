package routes

import (
	"github.com/gin-gonic/gin"

	"visit_tracker/internal/middleware"
)

func AuthRoutes(api *gin.RouterGroup, deps Dependencies) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.Auth.LoginAdmin)
		auth.POST("/logout", deps.Auth.LogoutAdmin)
		auth.GET("/me", middleware.RequireAuth(deps.Tokens), deps.Auth.CurrentAdmin)
	}
}
