package dto

import (
	"time"

	"github.com/spec-kit/chat-service/internal/domain"
)

const SchemaListNotifications = "notifications.list"

// ListNotificationsQuery pages through a user's notifications.
type ListNotificationsQuery struct {
	UnreadOnly bool `query:"unreadOnly"`
	Limit      int  `query:"limit" validate:"omitempty,min=1,max=100"`
}

func (r *ListNotificationsQuery) Sanitize() {
	if r.Limit == 0 {
		r.Limit = 50
	}
}

// NotificationResponse is the wire shape of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SenderID  *string   `json:"senderId,omitempty"`
	MessageID *string   `json:"messageId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotificationResponse maps a domain notification onto the wire shape.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		SenderID:  n.SenderID,
		MessageID: n.MessageID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
