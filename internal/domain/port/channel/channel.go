package channel

import (
	"context"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
)

// Channel validates and transmits a Message over one medium.
// Send never returns an error: every failure is logged and reported as false.
type Channel interface {
	Name() string
	ValidateMessage(msg domain.Message) bool
	Send(ctx context.Context, msg domain.Message) bool
}
