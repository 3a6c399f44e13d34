package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"api_pos/internal/auth"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the request context.
func AuthRequired(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": auth.ErrMissingToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireOperator allows employees and admins through.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CanOperate(c.GetString(ctxRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin allows admins only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CanMutateCatalog(c.GetString(ctxRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
