package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/medeiros-dev/notification-dispatch/internal/observability/metrics"
	"github.com/medeiros-dev/notification-dispatch/internal/usecases/notification"
)

func newRouter(serviceName string, handler *notification.DispatchNotificationHandler) *gin.Engine {
	srv := gin.New()
	srv.Use(gin.Recovery())
	srv.Use(otelgin.Middleware(serviceName))
	srv.Use(requestMetrics())

	handler.RegisterRoutes(srv.Group("/notifications"))

	srv.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	srv.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return srv
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		if endpoint == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		metrics.HttpRequestsTotal.WithLabelValues(endpoint, http.StatusText(status)).Inc()
		metrics.HttpRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}
