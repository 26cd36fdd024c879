package gateway

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/wiring"
)

// requestLogger logs each request's method, path, status, and latency via
// the shared logrus-backed logger, matching the teacher's structured
// request logging rather than gin's default text logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof(c.Request.Context(), "gateway: %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// requestTracing opens one span per request, mirroring the per-stage span
// pipeline.Run opens for worker consumers.
func requestTracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := wiring.Tracer.Start(c.Request.Context(), "gateway."+c.Request.Method+" "+c.FullPath())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			span.SetStatus(codes.Error, "request failed")
		}
		span.End()
	}
}
