package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/metrics"
)

// RequestLogger logs every completed request and, when m is non-nil,
// records its latency.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if m != nil {
			m.ObserveRequest(c.Request.Method, route, status, elapsed)
		}

		log.Info("Request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("durationMs", elapsed.Milliseconds()),
			zap.String("remoteAddr", c.ClientIP()),
		)
	}
}
