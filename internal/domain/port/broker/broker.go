package broker

import (
	"context"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
)

// OutboundPublisher hands outbound messages to a downstream delivery worker.
type OutboundPublisher interface {
	Publish(ctx context.Context, msg domain.OutboundMessage) error
	Close() error
}
