package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"visit_tracker/internal/accounts"
	"visit_tracker/internal/middleware"
)

type AuthController struct {
	DB     *gorm.DB
	Tokens *middleware.Tokens
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

// LoginAdmin checks the password and issues a session token, both in the
// body and as an HttpOnly cookie.
func (ac *AuthController) LoginAdmin(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := accounts.Authenticate(c.Request.Context(), ac.DB, body.Username, body.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed. Incorrect username or password."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	token, err := ac.Tokens.GenerateToken(middleware.Identity{AdminID: admin.ID, Username: admin.Username, Role: admin.Role})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(ac.Tokens.TTL().Seconds()), "/", "", ac.SecureCookie, true)

	logrus.WithFields(logrus.Fields{"username": admin.Username, "role": admin.Role}).Info("Admin logged in")
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":        admin.ID,
			"username":  admin.Username,
			"full_name": admin.FullName,
			"role":      admin.Role,
		},
	})
}

func (ac *AuthController) LogoutAdmin(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CurrentAdmin echoes the verified identity of the caller.
func (ac *AuthController) CurrentAdmin(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": id})
}

// EnsureSuperAdmin creates the bootstrap superadmin when it does not exist yet.
func (ac *AuthController) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	created, err := accounts.EnsureSuperAdmin(ctx, ac.DB, username, password)
	if err != nil {
		return err
	}
	if created {
		logrus.WithField("username", username).Info("Bootstrap superadmin created")
	}
	return nil
}
