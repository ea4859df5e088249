package notification

import "github.com/medeiros-dev/notification-dispatch/internal/domain"

// CreateNotificationDTO is the request body shared by every send route.
type CreateNotificationDTO struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Content string `json:"content" binding:"required"`
}

func (d CreateNotificationDTO) ToMessage() domain.Message {
	return domain.Message{
		Recipient: d.To,
		Subject:   d.Subject,
		Content:   d.Content,
	}
}

type SendResultDTO struct {
	Success bool `json:"success"`
}

type MultiChannelResultDTO struct {
	Success bool            `json:"success"`
	Results map[string]bool `json:"results"`
}
