package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wizard-game/utils"
)

// UserIDKey is where AuthMiddleware leaves the caller's id in the context.
const UserIDKey = "userID"

// AuthMiddleware accepts "Authorization: Bearer <token>" signed with secret.
// On routes with a :roomID the token must have been issued for that room.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": "missing token"})
			return
		}
		claims, err := utils.ParseAccessToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": "invalid token"})
			return
		}
		if roomID := c.Param("roomID"); roomID != "" && claims.RoomID != roomID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status_code": http.StatusForbidden, "msg": "token is not for this room"})
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
