package events

import (
	"time"

	"github.com/spec-kit/chat-service/internal/domain"
)

// EventType enumerates supported event identifiers. Names match the realtime
// channel vocabulary consumed by clients.
type EventType string

const (
	EventMessageSent      EventType = "message:send"
	EventMessageDelivered EventType = "message:delivered"
	EventMessageRead      EventType = "message:read"
	EventUserOnline       EventType = "user:online"
	EventUserOffline      EventType = "user:offline"
	EventNotificationNew  EventType = "notification:new"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID      string             `json:"message_id"`
	ConversationID string             `json:"conversation_id"`
	ReceiverID     string             `json:"receiver_id"`
	MessageType    domain.MessageType `json:"message_type"`
	BodyPreview    string             `json:"body_preview"`
}

// MessageStatusPayload payload for delivered/read transitions.
type MessageStatusPayload struct {
	MessageID      string               `json:"message_id"`
	ConversationID string               `json:"conversation_id"`
	Status         domain.MessageStatus `json:"status"`
}

// PresencePayload payload.
type PresencePayload struct {
	UserID   string          `json:"user_id"`
	Presence domain.Presence `json:"presence"`
}

// NotificationNewPayload payload.
type NotificationNewPayload struct {
	NotificationID string                  `json:"notification_id"`
	UserID         string                  `json:"user_id"`
	Type           domain.NotificationType `json:"notification_type"`
}
