package middleware

import (
	"fmt"
	"strings"

	"github.com/flightworks/aeroops-api/internal/presentation/http/dto/response"
	"github.com/flightworks/aeroops-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// and grants in the context for the handlers, the rate limiter and the
// idempotency store.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Set("user_permissions", claims.Permissions)

		c.Next()
	}
}

// RequirePermission gates a route group on one of the seeded permissions
// (manage-billing, record-payments, approve-checkins, correct-checkins, ...).
// The denial names the missing permission so an instructor hitting a
// billing route can tell a role gap from a broken token.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("user_permissions")
		granted, _ := v.([]string)

		for _, p := range granted {
			if p == permission {
				c.Next()
				return
			}
		}

		response.Forbidden(c, fmt.Sprintf("The %s permission is required for this action", permission))
		c.Abort()
	}
}
