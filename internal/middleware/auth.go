package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

const (
	ContextUserID = "user_id"
	ContextRoleID = "role_id"
	ContextClaims = "claims"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate requires a valid bearer token and stores its claims.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			m.reject(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.reject(c, "invalid authorization format")
			return
		}

		claims, err := m.jwt.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.reject(c, "invalid token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			m.reject(c, "invalid token")
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, userID)
		if claims.RoleID != nil {
			c.Set(ContextRoleID, *claims.RoleID)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, message string) {
	err := errors.Unauthorized(nil)
	err.Message = message
	c.AbortWithStatusJSON(int(errors.CodeUnauthorized), httputil.Failure[interface{}](err))
}

// GetUserID returns the authenticated user id, or 0.
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
