package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/chat-service/internal/api/dto"
	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/domain"
	"github.com/spec-kit/chat-service/internal/service"
	"github.com/spec-kit/chat-service/internal/validation"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// MessagesHandler exposes messaging endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs the handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messageService}
}

// Send handles POST /api/messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	req, ok := validation.BodyOf[*dto.SendMessageRequest](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	msg, err := h.messages.Send(c.UserContext(), principal.UserID, req.ReceiverID,
		req.Content, domain.MessageType(req.Type), req.ImageURL)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Message sent", fiber.Map{
		"message": dto.NewMessageResponse(msg),
	})
}

// ListConversations handles GET /api/messages/conversations.
func (h *MessagesHandler) ListConversations(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}

	convs, err := h.messages.ListConversations(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Conversations loaded", fiber.Map{
		"conversations": convs,
	})
}

// ListConversation handles GET /api/messages/conversations/:id.
func (h *MessagesHandler) ListConversation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	conversationID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, ok := validation.QueryOf[*dto.ListConversationQuery](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	msgs, err := h.messages.ListConversation(c.UserContext(), principal.UserID, conversationID, req.Limit, req.Offset)
	if err != nil {
		return err
	}

	results := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		results = append(results, dto.NewMessageResponse(&msgs[i]))
	}
	return respond(c, http.StatusOK, "Messages loaded", fiber.Map{
		"messages": results,
	})
}

// MarkRead handles POST /api/messages/:id/read.
func (h *MessagesHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	messageID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.messages.MarkRead(c.UserContext(), principal.UserID, messageID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Message marked read", fiber.Map{
		"message": dto.NewMessageResponse(msg),
	})
}

// MarkDelivered handles POST /api/messages/:id/delivered.
func (h *MessagesHandler) MarkDelivered(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	messageID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	msg, err := h.messages.MarkDelivered(c.UserContext(), principal.UserID, messageID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Message marked delivered", fiber.Map{
		"message": dto.NewMessageResponse(msg),
	})
}

// pathID reads a UUID path parameter, rejecting malformed identifiers before
// they reach a query.
func pathID(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewMalformedIdentifier()
	}
	return raw, nil
}
