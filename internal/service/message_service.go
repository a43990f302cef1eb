package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/domain"
	"github.com/spec-kit/chat-service/internal/events"
	"github.com/spec-kit/chat-service/internal/repository"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

const previewLen = 80

// MessageService handles sending and reading chat messages.
type MessageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// MessageDependencies encapsulates requirements for the message service.
type MessageDependencies struct {
	MessageRepo      repository.MessageRepository
	ConversationRepo repository.ConversationRepository
	UserRepo         repository.UserRepository
	NotificationRepo repository.NotificationRepository
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewMessageService builds the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:      deps.MessageRepo,
		conversations: deps.ConversationRepo,
		users:         deps.UserRepo,
		notifications: deps.NotificationRepo,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// Send persists a message, creating the conversation on first contact, then
// records a notification for the receiver and publishes the send event.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string, msgType domain.MessageType, imageURL string) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, apperrors.NewValidationError("Validation failed",
			map[string]any{"errors": map[string]string{"receiverId": "cannot message yourself"}})
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, err
	}

	conv, err := s.findOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		Type:           msgType,
		ImageURL:       imageURL,
		Status:         domain.MessageStatusSent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.conversations.SetLastMessage(ctx, conv.ID, msg.ID); err != nil {
		s.logger.Warn("update conversation head failed",
			zap.String("conversation_id", conv.ID), zap.Error(err))
	}

	notification := &domain.Notification{
		UserID:    receiverID,
		Type:      domain.NotificationTypeMessage,
		SenderID:  &senderID,
		MessageID: &msg.ID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("create notification failed",
			zap.String("message_id", msg.ID), zap.Error(err))
	} else {
		s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventNotificationNew,
			ActorID:   senderID,
			Timestamp: time.Now(),
			Payload: events.NotificationNewPayload{
				NotificationID: notification.ID,
				UserID:         receiverID,
				Type:           domain.NotificationTypeMessage,
			},
		})
	}

	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageSent,
		ActorID:   senderID,
		Timestamp: time.Now(),
		Payload: events.MessageSentPayload{
			MessageID:      msg.ID,
			ConversationID: conv.ID,
			ReceiverID:     receiverID,
			MessageType:    msg.Type,
			BodyPreview:    preview(content),
		},
	})

	s.logger.Info("message sent",
		zap.String("message_id", msg.ID),
		zap.String("conversation_id", conv.ID))
	return msg, nil
}

// ListConversation returns a page of messages; only participants may read.
func (s *MessageService) ListConversation(ctx context.Context, userID, conversationID string, limit, offset int) ([]domain.Message, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Conversation")
		}
		return nil, err
	}
	if !participant(conv, userID) {
		return nil, apperrors.NewForbidden(apperrors.MsgUnauthorized)
	}
	return s.messages.ListByConversation(ctx, conversationID, limit, offset)
}

// ListConversations returns the caller's conversations, most recent first.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

// MarkRead transitions a message to read; only the receiver may do so.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Message")
		}
		return nil, err
	}
	if msg.ReceiverID != userID {
		return nil, apperrors.NewForbidden(apperrors.MsgUnauthorized)
	}
	if msg.Status == domain.MessageStatusRead {
		return msg, nil
	}

	updated, err := s.messages.MarkRead(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageRead,
		ActorID:   userID,
		Timestamp: time.Now(),
		Payload: events.MessageStatusPayload{
			MessageID:      updated.ID,
			ConversationID: updated.ConversationID,
			Status:         updated.Status,
		},
	})
	return updated, nil
}

// MarkDelivered transitions a message to delivered; only the receiver may.
func (s *MessageService) MarkDelivered(ctx context.Context, userID, messageID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Message")
		}
		return nil, err
	}
	if msg.ReceiverID != userID {
		return nil, apperrors.NewForbidden(apperrors.MsgUnauthorized)
	}
	if msg.Status != domain.MessageStatusSent {
		return msg, nil
	}

	updated, err := s.messages.MarkDelivered(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMessageDelivered,
		ActorID:   userID,
		Timestamp: time.Now(),
		Payload: events.MessageStatusPayload{
			MessageID:      updated.ID,
			ConversationID: updated.ConversationID,
			Status:         updated.Status,
		},
	})
	return updated, nil
}

func (s *MessageService) findOrCreateConversation(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	conv, err := s.conversations.FindByParticipants(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	participants := []string{userA, userB}
	if participants[0] > participants[1] {
		participants[0], participants[1] = participants[1], participants[0]
	}
	conv = &domain.Conversation{Participants: participants}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func participant(conv *domain.Conversation, userID string) bool {
	for _, p := range conv.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	return content[:previewLen]
}
