package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"gardenia/backend/utils"
)

// Logger logs each request with method, path, status and duration
func Logger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("request",
			"remote", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
