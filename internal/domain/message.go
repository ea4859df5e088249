package domain

import "time"

// Message is one notification request. It is passed by value and never
// modified once built.
type Message struct {
	Recipient string `json:"to"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content"`
}

// HasSubject reports whether the optional subject was supplied.
func (m Message) HasSubject() bool {
	return m.Subject != ""
}

// OutboundMessage is what a channel hands to its transmitter for a single
// delivery attempt.
type OutboundMessage struct {
	ID        string            `json:"id"`
	Channel   string            `json:"channel"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject,omitempty"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
