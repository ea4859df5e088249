package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/internal/app/registry"
	portbroker "github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/infrastructure/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/infrastructure/channel/outbound"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/metrics"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/tracing"
	"github.com/medeiros-dev/notification-dispatch/internal/usecases/notification"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"

	// Import channel packages solely for their init() registration effect
	_ "github.com/medeiros-dev/notification-dispatch/internal/infrastructure/channel/email"
	_ "github.com/medeiros-dev/notification-dispatch/internal/infrastructure/channel/push"
	_ "github.com/medeiros-dev/notification-dispatch/internal/infrastructure/channel/sms"
)

// configureLogger replaces the bootstrap logger with one built from the
// loaded configuration, so .env values for LOG_* keys take effect.
func configureLogger(cfg *configs.Config) error {
	return logger.Configure(cfg.LogDevelopment, cfg.LogLevel, cfg.LogFile)
}

func main() {
	if err := logger.InitializeLogger(false); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	// --- Configuration ---
	cfg, err := configs.NewConfig(".", nil)
	if err != nil {
		logger.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := configureLogger(cfg); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}
	logger.L().Info("Starting notification dispatch service...")
	logger.L().Info("Configuration loaded",
		zap.Strings("enabledChannels", cfg.EnabledChannels),
		zap.Any("drivers", cfg.Drivers),
		zap.Duration("sendTimeout", cfg.SendTimeout),
		zap.String("httpServerAddress", cfg.HTTPServerAddress),
		zap.String("metricsServerAddress", cfg.MetricsServerAddress),
	)

	// --- Initialize OpenTelemetry Tracer ---
	tracerShutdown, err := tracing.InitTracer(cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.L().Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// --- Kafka Broker (only when a channel publishes) ---
	var publisher portbroker.OutboundPublisher
	if cfg.UsesDriver(outbound.DriverKafka) {
		kafkaBroker, err := broker.NewKafkaBroker(broker.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			logger.L().Fatal("Failed to initialize Kafka broker", zap.Error(err))
		}
		defer func() {
			if err := kafkaBroker.Close(); err != nil {
				logger.L().Error("Error closing kafka broker", zap.Error(err))
			}
		}()
		publisher = kafkaBroker
		logger.L().Info("Kafka Broker initialized",
			zap.Strings("kafkaBrokers", cfg.KafkaBrokers),
			zap.String("kafkaTopic", cfg.KafkaTopic),
		)
	}

	// --- Channel Setup (Dynamic via Registry) ---
	channels := registry.BuildChannels(cfg, publisher)
	if len(channels) == 0 {
		logger.L().Fatal("CRITICAL: No channels were successfully initialized. Check configuration and channel implementations.")
	}
	handler := notification.NewDispatchNotification(channels...)

	// --- Start Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.MetricsHandler())
	metricsServer := &http.Server{
		Addr:    cfg.MetricsServerAddress,
		Handler: metricsMux,
	}
	go func() {
		logger.L().Info("Starting metrics server", zap.String("address", cfg.MetricsServerAddress))
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("Metrics server ListenAndServe failed", zap.Error(err))
		}
	}()

	// --- Start HTTP Server ---
	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              cfg.HTTPServerAddress,
		Handler:           newRouter(cfg.OtelServiceName, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.L().Info("Server starting", zap.String("address", cfg.HTTPServerAddress))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.L().Info("Received signal, shutting down gracefully...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// In-flight dispatches finish before the broker is closed by its deferred Close.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.L().Info("Notification dispatch service shut down complete.")
}
