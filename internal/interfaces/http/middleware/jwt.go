package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/infrastructure/auth"
	"github.com/stockpilot/backend/internal/infrastructure/logger"
	"github.com/stockpilot/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUsernameKey = "jwt_username"
	JWTEmailKey    = "jwt_email"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Role names understood by RequireRole
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// JWTAuth creates JWT authentication middleware. Every request must carry a
// valid bearer token; the claims are stored in the gin context and the
// username is attached to the request-scoped logger.
func JWTAuth(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeInvalidToken, "Missing token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if log != nil {
				log.Warn("JWT authentication failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path))
			}
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
			default:
				abortUnauthorized(c, dto.ErrCodeInvalidToken, "Invalid token")
			}
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTEmailKey, claims.Email)
		c.Set(JWTRoleKey, claims.Role)

		ctx := logger.WithUser(c.Request.Context(), claims.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects requests whose token role does not grant the required
// role. Editors may do everything viewers can.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actual := c.GetString(JWTRoleKey)
		if !roleAllows(actual, role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

func roleAllows(actual, required string) bool {
	if actual == required {
		return true
	}
	return actual == RoleEditor && required == RoleViewer
}

// GetUsername returns the authenticated username, empty when unauthenticated
func GetUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}

// GetEmail returns the authenticated user's email
func GetEmail(c *gin.Context) string {
	return c.GetString(JWTEmailKey)
}

// GetRole returns the authenticated user's role
func GetRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
