package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"driveconnect/internal/domain"
	jwtsvc "driveconnect/internal/pkg/jwt"
	"driveconnect/internal/pkg/response"
)

const identityKey = "identity"

// Auth validates the bearer credential and attaches the decoded identity to
// the request. Missing, malformed and expired tokens each get their own 401
// message.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			response.AbortError(c, http.StatusUnauthorized, "missing or malformed bearer token")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing or malformed bearer token")
			return
		}

		ident, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwtsvc.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, "session expired, please log in again")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(identityKey, *ident)
		c.Next()
	}
}

// Identity returns the identity stored by Auth.
func Identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	ident, ok := v.(domain.Identity)
	return ident, ok
}

// RequireRole rejects authenticated callers whose account role does not match.
func RequireRole(role domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := Identity(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if ident.Role != role {
			if role == domain.RoleInstructor {
				response.AbortError(c, http.StatusForbidden, "instructors only")
			} else {
				response.AbortError(c, http.StatusForbidden, "students only")
			}
			return
		}
		c.Next()
	}
}
