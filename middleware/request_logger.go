package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slotwise/booking-api/util"
)

// RequestLogger logs each HTTP request with method, path, status, duration
// and the caller identity when the auth middleware has attached one.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"ip":          c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields["query"] = query
		}

		entry := util.Logger().WithFields(fields)
		if status >= 500 {
			entry.Error("request")
		} else {
			entry.Info("request")
		}
	}
}
