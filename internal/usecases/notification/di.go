package notification

import "github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"

func NewDispatchNotification(channels ...channel.Channel) *DispatchNotificationHandler {
	usecase := NewDispatchNotificationUseCase(channels...)
	handler := NewDispatchNotificationHandler(usecase)
	return handler
}
