package http

import (
	"net/http"

	"github.com/Netboss008/yacoolo/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the identity set by the auth middleware. Aborts with
// 401 when the route was wired without it.
func currentUserID(c *gin.Context) (domain.UserID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	userID, ok := v.(domain.UserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user context"})
		return "", false
	}
	return userID, true
}
