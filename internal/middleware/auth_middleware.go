package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/apperror"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// CurrentUserKey is the gin context key holding the authenticated *model.User.
const CurrentUserKey = "currentUser"

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.User, error)
}

// Authenticate requires a valid bearer token belonging to an active user.
// Every authentication failure answers with the same generic detail.
func Authenticate(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortWithError(c, apperror.ErrInvalidCredentials)
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if err := service.RequireActive(user); err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// AdminOnly must run after Authenticate.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortWithError(c, apperror.ErrInvalidCredentials)
			return
		}
		if err := service.RequireAdmin(user); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate, or nil on unprotected routes.
func CurrentUser(c *gin.Context) *model.User {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func abortWithError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	switch kind {
	case apperror.KindAuthentication:
		unauthorized(c, err.Error())
	case apperror.KindInternal:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	default:
		c.AbortWithStatusJSON(kind.Status(), gin.H{"detail": err.Error()})
	}
}
