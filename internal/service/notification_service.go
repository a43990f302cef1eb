package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/domain"
	"github.com/spec-kit/chat-service/internal/events"
	"github.com/spec-kit/chat-service/internal/repository"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// NotificationService reads and updates notification entries and reacts to
// published events.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, dispatcher: dispatcher, logger: logger}
}

// List returns a page of the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one notification as read; only its owner may.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Notification")
		}
		return err
	}
	return nil
}

// CountUnread returns the badge count.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// RegisterHandlers subscribes to events that should surface as audit entries
// on the notification path.
func (s *NotificationService) RegisterHandlers() {
	s.dispatcher.Subscribe(events.EventNotificationNew, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.NotificationNewPayload)
		if !ok {
			return nil
		}
		s.logger.Info("notification created",
			zap.String("notification_id", payload.NotificationID),
			zap.String("user_id", payload.UserID),
			zap.String("type", string(payload.Type)))
		return nil
	})
}
