package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logging emits one structured log line per request.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", RequestIDFromContext(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_id", UserIDFromContext(c)),
			zap.String("ip", c.ClientIP()),
		}
		if jobID := c.GetString("analysisJobId"); jobID != "" {
			fields = append(fields, zap.String("analysis_job_id", jobID))
		}
		if transition := c.GetString("statusTransition"); transition != "" {
			fields = append(fields, zap.String("status_transition", transition))
		}
		log.Info("request", fields...)
	}
}
