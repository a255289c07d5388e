package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	ua "github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request after the handler ran.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}
		for k, v := range deviceFields(c.Request.UserAgent()) {
			fields[k] = v
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}

func deviceFields(userAgent string) logrus.Fields {
	if userAgent == "" {
		return logrus.Fields{"device": "unknown"}
	}

	parser := ua.New(userAgent)
	browser, version := parser.Browser()

	device := "desktop"
	switch {
	case parser.Bot():
		device = "bot"
	case parser.Mobile():
		device = "mobile"
	}

	return logrus.Fields{
		"device":          device,
		"os":              parser.OS(),
		"browser":         browser,
		"browser_version": version,
	}
}
