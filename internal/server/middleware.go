package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/metrics"
)

const (
	headerView = "X-Finance-View"
	headerUser = "X-Finance-User"
)

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error().
			Str("panic", fmt.Sprintf("%v", rec)).
			Str("path", c.Request.URL.Path).
			Msg("Panic recovered in HTTP handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	})
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		corrID := c.GetHeader("X-Request-ID")
		if corrID == "" {
			corrID = c.GetHeader("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		c.Header("X-Correlation-ID", corrID)
		c.Next()
	}
}

// requestContextMiddleware carries the X-Finance-* identity headers into the
// request context. The view id scopes query supersession.
func requestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		view := c.GetHeader(headerView)
		user := c.GetHeader(headerUser)
		if view != "" || user != "" {
			rc := &common.RequestContext{UserID: user, ViewID: view}
			c.Request = c.Request.WithContext(common.WithRequestContext(c.Request.Context(), rc))
		}
		c.Next()
	}
}

// metricsMiddleware records request counts and latency by route template.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Trace()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Info()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Str("correlation_id", c.Writer.Header().Get("X-Correlation-ID")).
			Msg("HTTP request")
	}
}
