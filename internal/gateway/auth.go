package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/brillob/dtce/internal/config"
)

// apiKeyAuth implements spec §6's "X-API-Key header required in production,
// optional in dev" contract. The key itself is an HS256 JWT signed with
// Gateway:APIKey as the shared secret, reusing the teacher's JWT-based
// auth idiom from onlyoffice.go rather than a bare string comparison.
func apiKeyAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode != config.ModeProd || cfg.Gateway.APIKey == "" {
			c.Next()
			return
		}

		raw := c.GetHeader("X-API-Key")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-API-Key header"})
			return
		}
		raw = strings.TrimSpace(raw)

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Gateway.APIKey), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-API-Key"})
			return
		}
		c.Next()
	}
}
