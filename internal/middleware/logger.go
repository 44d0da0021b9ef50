package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestID echoes the client's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, reqID)
		c.Next()
	}
}

// RequestLogger writes one access log line per request, tagged with the
// request id and, once authenticated, the caller.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		base := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
			"request_id": c.Writer.Header().Get(RequestIDHeader),
		})
		base.WithField("user_agent", c.Request.UserAgent()).Debug("Incoming request")

		c.Next()

		status := c.Writer.Status()
		entry := base.WithFields(logrus.Fields{
			"status_code": status,
			"latency_ms":  time.Since(started).Milliseconds(),
			"bytes":       c.Writer.Size(),
		})
		if p, ok := PrincipalFrom(c); ok {
			entry = entry.WithField("user_id", p.UserID)
		}

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status >= http.StatusInternalServerError:
			entry.Error("Request completed with server error")
		case status >= http.StatusBadRequest:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}
