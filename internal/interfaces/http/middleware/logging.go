package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
)

// HeaderRequestID propagates or assigns the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// LoggingMiddleware logs one structured entry per request.
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware creates the middleware.
func NewLoggingMiddleware(log logging.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: log.Named("http")}
}

// Handler assigns a request ID, times the request, and logs its outcome.
func (m *LoggingMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		fields := []logging.Field{
			logging.String("request_id", requestID),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", elapsed),
			logging.String("client_ip", c.ClientIP()),
		}
		if clientID := ClientID(c); clientID != "" {
			fields = append(fields, logging.String("client_id", clientID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			m.logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			m.logger.Warn("request", fields...)
		default:
			m.logger.Info("request", fields...)
		}
	}
}
