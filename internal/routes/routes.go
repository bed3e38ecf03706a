package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visit_tracker/internal/controllers"
	"visit_tracker/internal/logger"
	"visit_tracker/internal/middleware"
)

// Dependencies are the controllers and token verifier the router wires up.
type Dependencies struct {
	Tokens  *middleware.Tokens
	Auth    *controllers.AuthController
	Visits  *controllers.VisitController
	Drivers *controllers.DriverController
	Feed    *controllers.VisitFeedController
}

func SetupRouter(deps Dependencies) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	AuthRoutes(api, deps)
	DriverRoutes(api, deps)
	AdminRoutes(api, deps)
	WebSocketRoutes(r, deps)

	return r
}
