package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easyops/contextengine/pkg/otel"
)

// telemetry 为每个请求创建 Span，记录请求指标和访问日志
func (s *Server) telemetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := s.tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			otel.WithSpanKind(otel.SpanKindServer),
			otel.WithAttributes(otel.HTTPRoute(route)),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(otel.HTTPStatus(status))
		if status >= 500 {
			span.SetStatus(otel.StatusError, c.Errors.String())
		}

		s.metrics.Counter(otel.MetricHTTPRequests).Add(ctx, 1,
			otel.NewAttr(otel.AttrHTTPRoute, route),
			otel.NewAttr(otel.AttrHTTPStatus, status),
		)

		log := s.logger.WithContext(ctx)
		fields := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("request failed", append(fields, "error", c.Errors.String())...)
		case status >= 400:
			log.Warn("request rejected", append(fields, "error", c.Errors.String())...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
