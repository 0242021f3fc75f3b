package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/constants"
	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/services"
)

// RequireAuth checks if the user is authenticated, either by a Bearer access
// token or by the session cookie set at login
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				apierrors.Unauthorized(c, "Invalid authorization header")
				c.Abort()
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				apierrors.Respond(c, err)
				c.Abort()
				return
			}
			c.Set(constants.ContextKeyUserID, claims.UserID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// LoadActor resolves the authenticated user into an authz.Actor. It must run
// after RequireAuth.
func LoadActor(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := auth.GetUser(userID)
		if err != nil {
			// a token or session can outlive its user
			if apierrors.KindOf(err) == apierrors.KindNotFound {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.Respond(c, err)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, authz.ActorFromUser(user))
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetActor retrieves the actor set by LoadActor. It returns nil when the
// request is anonymous.
func GetActor(c *gin.Context) *authz.Actor {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil
	}
	actor, _ := v.(*authz.Actor)
	return actor
}
