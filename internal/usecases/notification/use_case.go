package notification

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"
	"github.com/medeiros-dev/notification-dispatch/internal/interfaces"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/metrics"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/tracing"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

const (
	EmailChannel = "email"
	SMSChannel   = "sms"
	PushChannel  = "push"
)

// DispatchNotificationUseCase routes messages to the configured channels.
// The channel set is fixed at construction and only read afterwards.
type DispatchNotificationUseCase struct {
	channels map[string]channel.Channel
}

var _ interfaces.NotificationDispatcher = (*DispatchNotificationUseCase)(nil)

// NewDispatchNotificationUseCase indexes channels by Name. A later channel
// with the same name replaces an earlier one.
func NewDispatchNotificationUseCase(channels ...channel.Channel) *DispatchNotificationUseCase {
	byName := make(map[string]channel.Channel, len(channels))
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		byName[ch.Name()] = ch
	}
	return &DispatchNotificationUseCase{channels: byName}
}

func (u *DispatchNotificationUseCase) SendEmail(ctx context.Context, msg domain.Message) bool {
	return u.send(ctx, EmailChannel, msg)
}

func (u *DispatchNotificationUseCase) SendSMS(ctx context.Context, msg domain.Message) bool {
	return u.send(ctx, SMSChannel, msg)
}

func (u *DispatchNotificationUseCase) SendPush(ctx context.Context, msg domain.Message) bool {
	return u.send(ctx, PushChannel, msg)
}

// SendMultiChannel sends msg over email and sms concurrently and returns
// [email, sms] once both have finished.
func (u *DispatchNotificationUseCase) SendMultiChannel(ctx context.Context, msg domain.Message) []bool {
	return u.SendChannels(ctx, msg, EmailChannel, SMSChannel)
}

// SendChannels sends msg over every named channel concurrently. results[i]
// belongs to names[i]. One channel failing never stops the others.
func (u *DispatchNotificationUseCase) SendChannels(ctx context.Context, msg domain.Message, names ...string) []bool {
	ctx, span := tracing.Tracer.Start(ctx, "DispatchNotificationUseCase.SendChannels",
		trace.WithAttributes(attribute.StringSlice("notification.channels", names)),
	)
	defer span.End()

	results := make([]bool, len(names))

	// Sends never return an error, so Wait is only a join.
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = u.send(ctx, name, msg)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordFanOut(results)
	logger.L().Debug("Multi-channel dispatch finished",
		zap.Strings("channels", names),
		zap.Bools("results", results),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	)
	return results
}

func (u *DispatchNotificationUseCase) send(ctx context.Context, name string, msg domain.Message) bool {
	ch, ok := u.channels[name]
	if !ok {
		metrics.DispatchAttempts.WithLabelValues(name, metrics.OutcomeNoChannel).Inc()
		logger.L().Warn("No channel configured for dispatch",
			zap.String("channel", name),
			zap.String("traceID", logger.TraceIDFromContext(ctx)),
		)
		return false
	}
	return ch.Send(ctx, msg)
}
