package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/chat-service/internal/domain"
)

const (
	SchemaSendMessage      = "messages.send"
	SchemaListConversation = "messages.list"
)

// SendMessageRequest payload for sending a chat message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required,uuid"`
	Content    string `json:"content" validate:"required,max=5000"`
	Type       string `json:"type" validate:"omitempty,oneof=text image video file"`
	ImageURL   string `json:"imageUrl" validate:"omitempty,url"`
}

func (r *SendMessageRequest) Sanitize() {
	r.ReceiverID = strings.TrimSpace(r.ReceiverID)
	r.Content = strings.TrimSpace(r.Content)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if r.Type == "" {
		r.Type = string(domain.MessageTypeText)
	}
}

// ListConversationQuery pages through a conversation's messages.
type ListConversationQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

func (r *ListConversationQuery) Sanitize() {
	if r.Limit == 0 {
		r.Limit = 50
	}
}

// MessageResponse is the wire shape of a message.
type MessageResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	ReceiverID     string     `json:"receiverId"`
	Content        string     `json:"content"`
	Type           string     `json:"type"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	Status         string     `json:"status"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewMessageResponse maps a domain message onto the wire shape.
func NewMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		Type:           string(m.Type),
		ImageURL:       m.ImageURL,
		Status:         string(m.Status),
		DeliveredAt:    m.DeliveredAt,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
