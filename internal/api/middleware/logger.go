package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/pokedex/internal/logger"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const loggerKey = "logger"

// LoggerMiddleware attaches a request-scoped logger to the request context
// and logs one line per completed request.
// Parameters:
//   - log: base logger; nil uses the default logger.
//
// Returns:
//   - gin.HandlerFunc: middleware handler.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(c *gin.Context) {
		start := time.Now()

		// An inbound id lets the host page correlate its calls
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLog := log.WithFields(logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		ctx := reqLog.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Set(loggerKey, reqLog)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		entry := logger.With(logger.Fields{
			"method":               c.Request.Method,
			"route":                route,
			"path":                 c.Request.URL.RequestURI(),
			logger.FieldStatus:     c.Writer.Status(),
			logger.FieldSize:       c.Writer.Size(),
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		})
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Warn(ctx, "Request failed")
		case c.Writer.Status() >= 500:
			entry.Warn(ctx, "Request completed")
		default:
			entry.Info(ctx, "Request completed")
		}
	}
}

// GetLogger returns the request-scoped logger, falling back to the one on
// the request context.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.FromContext(c.Request.Context())
}
