package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const sessionIDKey = "sessionId"

// SessionMiddleware rejects session routes whose id is not a uuid.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		if _, err := uuid.Parse(sessionID); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid session ID format", []global.ValidationError{
				{Field: "sessionId", Message: "Must be a valid UUID", Code: "invalid_format"},
			}))
			c.Abort()
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
