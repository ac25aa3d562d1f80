package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body size limits
const (
	// EventBodyLimit covers the signal tree sent with page events.
	EventBodyLimit int64 = 64 << 10
	// LogsBodyLimit covers a batch of browser log entries.
	LogsBodyLimit int64 = 512 << 10
)

// BodySizeLimitMiddleware limits the size of request bodies
func BodySizeLimitMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

		c.Next()
	}
}
