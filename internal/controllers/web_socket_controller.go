package controllers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"visit_tracker/internal/feed"
	"visit_tracker/internal/middleware"
)

type VisitFeedController struct {
	Hub *feed.Hub
	// AllowedOrigins restricts the Origin header; empty allows any.
	AllowedOrigins []string
}

func (fc *VisitFeedController) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(fc.AllowedOrigins) == 0 || slices.Contains(fc.AllowedOrigins, origin)
		},
	}
}

// HandleVisitFeed upgrades an authenticated request and streams visit
// updates until the client goes away. Incoming messages are ignored.
func (fc *VisitFeedController) HandleVisitFeed(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	upgrader := fc.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade visit feed connection")
		return
	}
	defer conn.Close()

	logrus.WithFields(logrus.Fields{
		"username": id.Username,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Visit feed connection established.")

	fc.Hub.RegisterClient(conn)
	defer fc.Hub.UnregisterClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("username", id.Username).Warn("Visit feed closed unexpectedly")
			}
			break
		}
	}
	logrus.WithField("username", id.Username).Info("Visit feed connection closed.")
}
