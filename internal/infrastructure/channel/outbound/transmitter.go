// Package outbound holds what every channel variant shares: the transmitter
// drivers and the single-attempt delivery sequence.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

const (
	DriverLog   = "log"
	DriverKafka = "kafka"

	// TransmissionLogMessage is the entry written for every simulated transmission.
	TransmissionLogMessage = "Simulated transmission"
)

// Transmitter performs the I/O step of a send. It is the only place a send
// may block.
type Transmitter interface {
	Transmit(ctx context.Context, msg domain.OutboundMessage) error
}

// NewTransmitter picks the transmitter for a driver name. The choice is made
// once, when the channel is built.
func NewTransmitter(driver string, publisher broker.OutboundPublisher, latency time.Duration) (Transmitter, error) {
	switch driver {
	case "", DriverLog:
		return NewLogTransmitter(latency), nil
	case DriverKafka:
		if publisher == nil {
			return nil, errors.New("kafka driver requires a configured outbound publisher")
		}
		return NewPublisherTransmitter(publisher), nil
	default:
		return nil, fmt.Errorf("unknown transmitter driver %q", driver)
	}
}

// LogTransmitter simulates delivery by logging the intent.
type LogTransmitter struct {
	latency time.Duration
}

func NewLogTransmitter(latency time.Duration) *LogTransmitter {
	return &LogTransmitter{latency: latency}
}

func (t *LogTransmitter) Transmit(ctx context.Context, msg domain.OutboundMessage) error {
	if t.latency > 0 {
		timer := time.NewTimer(t.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	fields := []zap.Field{
		zap.String("channel", msg.Channel),
		zap.String("messageID", msg.ID),
		zap.String("recipient", msg.Recipient),
		zap.Int("contentLength", len(msg.Content)),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	}
	if msg.Subject != "" {
		fields = append(fields, zap.String("subject", msg.Subject))
	}

	keys := make([]string, 0, len(msg.Metadata))
	for k := range msg.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, msg.Metadata[k]))
	}

	logger.L().Info(TransmissionLogMessage, fields...)
	return nil
}

// PublisherTransmitter hands the message to a broker for a downstream worker.
type PublisherTransmitter struct {
	publisher broker.OutboundPublisher
}

func NewPublisherTransmitter(publisher broker.OutboundPublisher) *PublisherTransmitter {
	return &PublisherTransmitter{publisher: publisher}
}

func (t *PublisherTransmitter) Transmit(ctx context.Context, msg domain.OutboundMessage) error {
	if err := t.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish outbound %s message: %w", msg.Channel, err)
	}
	return nil
}
