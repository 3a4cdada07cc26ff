package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/metrics"
)

// ActivityWriter appends entries to the audit log
type ActivityWriter interface {
	Log(ctx context.Context, entry *models.ActivityLog) error
}

// RequestLogger logs every request once it has been handled
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("HTTP request")
	}
}

// Metrics observes request durations labelled by route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.APIRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ActivityLogger records ACCESS_<METHOD> entries for successful state-changing requests.
// A failed write is logged and never fails the request.
func ActivityLogger(repo ActivityWriter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		entry := &models.ActivityLog{
			Action:      models.ActionAccessPrefix + method,
			Description: fmt.Sprintf("%s %s", method, c.Request.URL.Path),
			IPAddress:   c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			entry.UserID = &userID
		}

		if err := repo.Log(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			log.Warn().Err(err).Str("action", entry.Action).Msg("Failed to record activity")
		}
	}
}
