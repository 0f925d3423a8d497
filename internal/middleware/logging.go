package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aklujeats/aklujeats/internal/logger"
)

const (
	// HeaderCorrelationID carries the request correlation id in and out
	HeaderCorrelationID = "X-Correlation-ID"
	correlationIDKey    = "correlation_id"
)

// RequestLogger logs every request with its correlation id, reusing the
// caller's id when one is supplied
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		corrID := c.GetHeader(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		c.Set(correlationIDKey, corrID)
		c.Header(HeaderCorrelationID, corrID)

		reqLogger := logger.GetLogger().Zerolog().With().Str(correlationIDKey, corrID).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := reqLogger.Info()
		switch {
		case status >= 500:
			event = reqLogger.Error()
		case status >= 400:
			event = reqLogger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	}
}

// CorrelationID returns the correlation id assigned to the request
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}
