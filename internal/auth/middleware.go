package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	svcErr "github.com/shhmatch/backend/internal/errors"
)

// Context keys set by RequireAuth.
const (
	CtxUserID = "auth.user_id"
	CtxRole   = "auth.role"
)

// RequireAuth validates the Bearer token and stores the caller's id and
// role on the request context.
func RequireAuth(ti *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			svcErr.Abort(c, svcErr.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			svcErr.Abort(c, svcErr.Unauthorized("authorization header must be: Bearer <token>"))
			return
		}

		claims, err := ti.Parse(parts[1])
		if err != nil {
			svcErr.Abort(c, svcErr.Unauthorized("invalid token"))
			return
		}

		uid, err := uuid.Parse(claims.Subject)
		if err != nil {
			svcErr.Abort(c, svcErr.Unauthorized("invalid token subject"))
			return
		}

		c.Set(CtxUserID, uid)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin allows only callers whose token carries the admin role.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get(CtxRole); role != "admin" {
			svcErr.Abort(c, svcErr.Forbidden("admin only"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id from the request context.
func UserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(CtxUserID)
	uid, _ := v.(uuid.UUID)
	return uid
}
