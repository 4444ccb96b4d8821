package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pengaduan-service/internal/auth"
)

const (
	contextKeyUsername = "admin_username"
	contextKeyRole     = "admin_role"
)

// requireAdmin guards staff endpoints with a Bearer session token.
func requireAdmin(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token tidak ditemukan")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token tidak valid")
			c.Abort()
			return
		}

		c.Set(contextKeyUsername, claims.Subject)
		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}
