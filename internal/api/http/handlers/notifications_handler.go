package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-service/internal/api/dto"
	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/service"
	"github.com/spec-kit/chat-service/internal/validation"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// NotificationsHandler exposes notification endpoints.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs the handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	req, ok := validation.QueryOf[*dto.ListNotificationsQuery](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	items, err := h.notifications.List(c.UserContext(), principal.UserID, req.UnreadOnly, req.Limit)
	if err != nil {
		return err
	}
	unread, err := h.notifications.CountUnread(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}

	results := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		results = append(results, dto.NewNotificationResponse(&items[i]))
	}
	return respond(c, http.StatusOK, "Notifications loaded", fiber.Map{
		"notifications": results,
		"unreadCount":   unread,
	})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	notificationID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.UserContext(), principal.UserID, notificationID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Notification marked read", nil)
}
