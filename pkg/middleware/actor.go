package middleware

import (
	"net/http"
	"strings"

	"NeighborGuard/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated user id set by the gateway in
	// front of this service.
	UserIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// ActorMiddleware requires an authenticated user id and stores it on the
// context.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{Code: http.StatusUnauthorized, Message: "missing user identity"})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// CurrentUserID 当前请求的用户，未认证时为空
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
