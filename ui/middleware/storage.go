package middleware

import (
	"net/http"

	"healthcorr/domain/core"
	"healthcorr/internal"

	"github.com/gin-gonic/gin"
)

// RequireStorage rejects snapshot requests with 503 when no repository is configured
func RequireStorage(enabled bool, logger *internal.Logger) gin.HandlerFunc {
	logger = internal.OrDefault(logger).With("RequireStorage")
	return func(c *gin.Context) {
		if !enabled {
			logger.Debug("rejecting %s %s: storage disabled", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": core.ErrStorageDisabled.Error()})
			return
		}
		c.Next()
	}
}
