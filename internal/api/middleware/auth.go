package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mbetancur/basinview/internal/crypto"
)

// AuthMiddleware creates a middleware that validates session tokens. The
// token is read from the Authorization header, or from the "token" query
// parameter for WebSocket upgrades where custom headers are unavailable.
func AuthMiddleware(jwtManager *crypto.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			// Extract token (format: "Bearer <token>")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("sessionID", claims.SessionID)
		c.Next()
	}
}

// GetSessionID extracts the session ID from the Gin context
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get("sessionID")
	if !exists {
		return "", false
	}
	return sessionID.(string), true
}
