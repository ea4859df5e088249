package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	port "github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/metrics"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/tracing"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

const writeTimeout = 10 * time.Second

// messageWriter is the subset of *kafka.Writer the broker needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroker publishes outbound messages to a single Kafka topic.
type KafkaBroker struct {
	writer messageWriter
	topic  string
	mu     sync.Mutex
	closed bool
}

// Config holds configuration for the KafkaBroker.
type Config struct {
	Brokers []string
	Topic   string
}

var _ port.OutboundPublisher = (*KafkaBroker)(nil)

// NewKafkaBroker creates a KafkaBroker writing to cfg.Topic.
func NewKafkaBroker(cfg Config) (*KafkaBroker, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic cannot be empty")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newKafkaBroker(w, cfg.Topic), nil
}

func newKafkaBroker(w messageWriter, topic string) *KafkaBroker {
	return &KafkaBroker{writer: w, topic: topic}
}

// Publish writes msg as JSON, keyed by recipient so that one recipient's
// messages keep their order within a partition.
func (kb *KafkaBroker) Publish(ctx context.Context, msg domain.OutboundMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		metrics.KafkaPublishTotal.WithLabelValues("marshal_error").Inc()
		return fmt.Errorf("failed to marshal outbound message %s: %w", msg.ID, err)
	}

	ctx, span := tracing.Tracer.Start(ctx, "KafkaBroker.Publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	headers := []kafka.Header{
		{Key: ChannelHeader, Value: []byte(msg.Channel)},
		{Key: MessageIDHeader, Value: []byte(msg.ID)},
	}
	propagation.TraceContext{}.Inject(ctx, otelHeaderCarrier{headers: &headers})

	record := kafka.Message{
		Topic:   kb.topic,
		Key:     []byte(msg.Recipient),
		Value:   payload,
		Headers: headers,
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	start := time.Now()
	err = kb.writer.WriteMessages(writeCtx, record)
	metrics.KafkaPublishDuration.Observe(time.Since(start).Seconds())
	traceID := logger.TraceIDFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.KafkaPublishTotal.WithLabelValues("failure").Inc()
		logger.L().Error("Failed to write outbound message to kafka",
			zap.String("messageID", msg.ID),
			zap.String("channel", msg.Channel),
			zap.String("topic", kb.topic),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write outbound message to kafka: %w", err)
	}

	metrics.KafkaPublishTotal.WithLabelValues("success").Inc()
	logger.L().Debug("Outbound message written to kafka",
		zap.String("messageID", msg.ID),
		zap.String("channel", msg.Channel),
		zap.String("topic", kb.topic),
		zap.String("traceID", traceID),
	)
	return nil
}

// Close flushes and closes the writer. Calling it more than once is a no-op.
func (kb *KafkaBroker) Close() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.closed {
		return nil
	}
	kb.closed = true

	logger.L().Info("Closing Kafka writer...")
	if err := kb.writer.Close(); err != nil {
		logger.L().Error("Failed to close kafka writer", zap.Error(err))
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	logger.L().Info("Kafka writer closed.")
	return nil
}
