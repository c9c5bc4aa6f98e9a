package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"driveconnect/internal/pkg/response"
)

// RequestLogger logs every request with a request id (taken from
// X-Request-ID or generated), and converts panics into plain 500s.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					zap.String("request_id", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", recovered),
					zap.Stack("stack"),
				)
				response.AbortError(c, http.StatusInternalServerError, "internal server error")
				return
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.String("client_ip", c.ClientIP()),
				zap.Duration("latency", time.Since(start)),
			}
			if ident, ok := Identity(c); ok {
				fields = append(fields, zap.Int64("uid", ident.UID), zap.String("role", string(ident.Role)))
			}

			if c.Writer.Status() >= http.StatusInternalServerError {
				log.Error("request failed", fields...)
			} else {
				log.Info("request", fields...)
			}
		}()

		c.Next()
	}
}
