package domain

import "time"

// Conversation groups the message history between two participants.
type Conversation struct {
	ID              string
	Participants    []string
	LastMessageID   *string
	LastMessageTime *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
