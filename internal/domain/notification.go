package domain

import "time"

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTypeMessage       NotificationType = "message"
	NotificationTypeFriendRequest NotificationType = "friend_request"
	NotificationTypeSystem        NotificationType = "system"
)

// Notification is an unread-badge entry for a user.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	SenderID  *string
	MessageID *string
	IsRead    bool
	CreatedAt time.Time
}
