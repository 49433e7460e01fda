package middleware

import (
	"time"

	"healthcorr/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request at debug level, and at warn level for 5xx responses
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	logger = internal.OrDefault(logger).With("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= 500 {
			logger.Warn("%s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, elapsed, c.Errors.String())
			return
		}
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
