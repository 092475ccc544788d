package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/repository"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

const emailKey = "email"

// RequireAuth resolves the caller from a bearer token. No header is 401; a
// header that does not verify is 403.
func RequireAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized access"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}
		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}

		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. It looks the caller up on every
// request, so a role change applies without reissuing tokens. An unknown
// user is forbidden, not an error.
func RequireAdmin(users repository.UserRepository, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := Email(c)
		user, err := users.FindByEmail(c.Request.Context(), email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Msg("admin lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve role"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}
		c.Next()
	}
}

// Email returns the caller email set by RequireAuth.
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}
