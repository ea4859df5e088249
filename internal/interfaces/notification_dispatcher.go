package interfaces

import (
	"context"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
)

// NotificationDispatcher is the orchestrator contract seen by the transport
// layer. Every method reports plain booleans and never returns an error.
type NotificationDispatcher interface {
	SendEmail(ctx context.Context, msg domain.Message) bool
	SendSMS(ctx context.Context, msg domain.Message) bool
	SendPush(ctx context.Context, msg domain.Message) bool
	SendMultiChannel(ctx context.Context, msg domain.Message) []bool
}
