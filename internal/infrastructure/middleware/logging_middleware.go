package middleware

import (
	"context"
	"time"

	"github.com/Netboss008/yacoolo/pkg/logger"
	"github.com/Netboss008/yacoolo/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware assigns each request an ID, echoes it back in the
// X-Request-ID header and logs method, path, status and duration.
func RequestLoggingMiddleware(ctxLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := context.WithValue(c.Request.Context(), logger.CtxKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		ctxLogger.LogRequest(c.Request.Context(), c.Request.Method, c.FullPath(),
			c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
