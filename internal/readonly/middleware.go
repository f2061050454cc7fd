package readonly

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message is returned for writes rejected in read-only mode.
const Message = "catalog is in read-only mode"

// Middleware blocks write operations while read-only mode is on.
// GET, HEAD and OPTIONS always pass.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a read-only mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that rejects writes with a 403 envelope.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    http.StatusForbidden,
			"success": false,
			"error":   Message,
			"payload": gin.H{},
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
