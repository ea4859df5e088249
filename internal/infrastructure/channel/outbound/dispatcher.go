package outbound

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/metrics"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/tracing"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

// Valid is the shared dispatch rule: a recipient and some content.
func Valid(msg domain.Message) bool {
	return msg.Recipient != "" && msg.Content != ""
}

// Dispatcher runs one delivery attempt for a channel and turns every failure
// into false plus a log entry.
type Dispatcher struct {
	channel     string
	transmitter Transmitter
	timeout     time.Duration
}

// NewDispatcher builds a Dispatcher. A zero timeout means no deadline.
func NewDispatcher(channel string, transmitter Transmitter, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		channel:     channel,
		transmitter: transmitter,
		timeout:     timeout,
	}
}

// Reject records a message that failed validation. Nothing is transmitted.
func (d *Dispatcher) Reject(ctx context.Context, msg domain.Message) bool {
	metrics.DispatchAttempts.WithLabelValues(d.channel, metrics.OutcomeRejected).Inc()
	logger.L().Debug("Message rejected by validation",
		zap.String("channel", d.channel),
		zap.Bool("hasRecipient", msg.Recipient != ""),
		zap.Bool("hasContent", msg.Content != ""),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	)
	return false
}

// Outbound stamps msg with a fresh ID for this attempt.
func (d *Dispatcher) Outbound(msg domain.Message, subject string, metadata map[string]string) domain.OutboundMessage {
	return domain.OutboundMessage{
		ID:        uuid.New().String(),
		Channel:   d.channel,
		Recipient: msg.Recipient,
		Subject:   subject,
		Content:   msg.Content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}

// Attempt transmits msg once.
func (d *Dispatcher) Attempt(ctx context.Context, msg domain.OutboundMessage) bool {
	ctx, span := tracing.Tracer.Start(ctx, "Channel.Send",
		trace.WithAttributes(
			attribute.String("notification.channel", d.channel),
			attribute.String("notification.id", msg.ID),
		),
	)
	defer span.End()

	start := time.Now()
	err := d.transmitWithDeadline(ctx, msg)
	traceID := logger.TraceIDFromContext(ctx)

	if err != nil {
		outcome, reason := metrics.OutcomeFailed, "transmission failed"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome, reason = metrics.OutcomeTimeout, "timeout"
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		metrics.DispatchAttempts.WithLabelValues(d.channel, outcome).Inc()
		metrics.ObserveDuration(d.channel, false, start)

		logger.L().Error("Channel send failed",
			zap.String("channel", d.channel),
			zap.String("messageID", msg.ID),
			zap.String("reason", reason),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("traceID", traceID),
			zap.Error(err),
		)
		return false
	}

	metrics.DispatchAttempts.WithLabelValues(d.channel, metrics.OutcomeSucceeded).Inc()
	metrics.ObserveDuration(d.channel, true, start)
	logger.L().Debug("Channel send succeeded",
		zap.String("channel", d.channel),
		zap.String("messageID", msg.ID),
		zap.String("traceID", traceID),
	)
	return true
}

func (d *Dispatcher) transmitWithDeadline(ctx context.Context, msg domain.OutboundMessage) error {
	if d.timeout <= 0 {
		return d.transmit(ctx, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so a transmitter that ignores ctx can still finish after we return.
	done := make(chan error, 1)
	go func() {
		done <- d.transmit(ctx, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		metrics.AbandonedTransmissions.WithLabelValues(d.channel).Inc()
		go d.awaitAbandoned(done, msg.ID, time.Now())
		return fmt.Errorf("%s send exceeded %s: %w", d.channel, d.timeout, ctx.Err())
	}
}

// awaitAbandoned waits for a transmitter that outlived its deadline.
func (d *Dispatcher) awaitAbandoned(done <-chan error, messageID string, abandonedAt time.Time) {
	err := <-done
	metrics.AbandonedTransmissions.WithLabelValues(d.channel).Dec()

	fields := []zap.Field{
		zap.String("channel", d.channel),
		zap.String("messageID", messageID),
		zap.Duration("lateBy", time.Since(abandonedAt)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.L().Debug("Abandoned transmission returned", fields...)
}

func (d *Dispatcher) transmit(ctx context.Context, msg domain.OutboundMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("CRITICAL: Panic recovered in channel transmitter",
				zap.String("channel", d.channel),
				zap.String("messageID", msg.ID),
				zap.Any("panicValue", r),
				zap.String("stacktrace", string(debug.Stack())),
			)
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return d.transmitter.Transmit(ctx, msg)
}
