package domain

import "time"

// Message is an admin-to-user note delivered through the attendance service.
type Message struct {
	ID     string    `json:"id,omitempty"`
	UserID string    `json:"userId"`
	Body   string    `json:"message"`
	SentAt time.Time `json:"sentAt,omitempty"`
}
