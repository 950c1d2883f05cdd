package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/jwt"
	"queueless/internal/pkg/response"
)

const (
	keyUserID    = "user_id"
	keyEmail     = "email"
	keyRole      = "role"
	keySessionID = "session_id"
	keyExpiresAt = "session_expires_at"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// SessionChecker reports whether a session id was revoked by logout.
type SessionChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	errAuthRequired   = apperr.Unauthorized("Authentication required")
	errInvalidHeader  = apperr.Unauthorized("Invalid authorization header")
	errInvalidSession = apperr.Unauthorized("Invalid or expired session")
	errRevoked        = apperr.Unauthorized("Session has been revoked")
)

// Auth accepts a bearer token or the session cookie. WebSocket upgrades may
// also pass the token as ?token= since browsers cannot set headers there.
func Auth(tokens TokenValidator, sessions SessionChecker, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c, cookieName)
		if err != nil {
			abortWith(c, err)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			abortWith(c, errInvalidSession)
			return
		}

		if sessions != nil && claims.ID != "" {
			revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				abortWith(c, apperr.Internal("Failed to check session", err))
				return
			}
			if revoked {
				abortWith(c, errRevoked)
				return
			}
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyEmail, claims.Email)
		c.Set(keyRole, claims.Role)
		c.Set(keySessionID, claims.ID)
		c.Set(keyExpiresAt, claims.ExpiresAtTime())
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errInvalidHeader
		}
		return strings.TrimSpace(token), nil
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v, nil
		}
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		if v := c.Query("token"); v != "" {
			return v, nil
		}
	}
	return "", errAuthRequired
}

// ActorFrom returns the authenticated caller set by Auth.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	id := c.GetInt64(keyUserID)
	if id == 0 {
		return domain.Actor{}, false
	}
	return domain.Actor{
		UserID: id,
		Email:  c.GetString(keyEmail),
		Role:   domain.Role(c.GetString(keyRole)),
	}, true
}

// SessionFrom returns the token id and expiry of the current session.
func SessionFrom(c *gin.Context) (string, time.Time) {
	return c.GetString(keySessionID), c.GetTime(keyExpiresAt)
}

func abortWith(c *gin.Context, err error) {
	response.FromError(c, err)
	c.Abort()
}
