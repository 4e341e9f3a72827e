package router

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger logs method, path, status and latency under a short request id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()[:8]
		c.Set("request_id", id)

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		log.Printf("[%s] %s %s -> %d (%s)", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	}
}
