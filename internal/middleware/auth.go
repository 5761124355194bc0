package middleware

import (
	"strings"

	"devsquare/internal/apperrors"
	"devsquare/internal/logger"
	"devsquare/internal/models"
	"devsquare/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey   = "user"
	TokenKey       = "session_token"
	UnreadCountKey = "unread_count"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// LoadUser resolves the session token from the bearer header or the session
// cookie and puts the signed-in user on the context. Anonymous requests pass
// through untouched.
func LoadUser(svc *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		fromCookie := false
		token := bearerToken(c)
		if token == "" {
			if v, ok := session.Get(TokenKey).(string); ok {
				token, fromCookie = v, true
			}
		}
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		s, err := svc.Sessions.Get(ctx, token)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrUnauthenticated) {
				if fromCookie {
					session.Delete(TokenKey)
					_ = session.Save()
				}
			} else {
				logger.Warn().Err(err).Msg("session lookup failed")
			}
			c.Next()
			return
		}

		user, err := svc.Users.GetByID(ctx, s.UserID)
		if err == nil {
			c.Set(CheckUserKey, user)
			c.Set(TokenKey, token)
			c.Set(logger.UserIDKey, user.ID)

			if count, err := svc.Notifications.UnreadCount(ctx, user.ID); err == nil {
				c.Set(UnreadCountKey, count)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser resolved, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentToken returns the session token that authenticated the request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}

// UnreadCount returns the caller's unread notification count resolved by LoadUser.
func UnreadCount(c *gin.Context) int {
	return c.GetInt(UnreadCountKey)
}

// SetSessionCookie stores token in the session cookie.
func SetSessionCookie(c *gin.Context, token string) error {
	session := sessions.Default(c)
	session.Set(TokenKey, token)
	return session.Save()
}

// ClearSessionCookie drops the token from the session cookie.
func ClearSessionCookie(c *gin.Context) error {
	session := sessions.Default(c)
	session.Delete(TokenKey)
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.StatusCode(err), apperrors.NewErrorResponse(err))
}

// AuthRequired ensures a user is signed in.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			abort(c, apperrors.NewAuthError("authentication required"))
			return
		}
		c.Next()
	}
}

// AdminRequired ensures the signed-in user is an admin.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, apperrors.NewAuthError("authentication required"))
			return
		}
		if !user.IsAdmin {
			abort(c, apperrors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}
