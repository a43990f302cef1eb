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

// UsersHandler exposes profile and search endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}

	user, err := h.users.GetProfile(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	h.users.TouchPresence(c.UserContext(), principal.UserID)

	return respond(c, http.StatusOK, "Profile loaded", fiber.Map{
		"user": dto.NewUserResponse(user, true),
	})
}

// UpdateMe handles PUT /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	req, ok := validation.BodyOf[*dto.UpdateProfileRequest](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, err := h.users.UpdateProfile(c.UserContext(), principal.UserID, req.FirstName, req.LastName, req.ProfileImage)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Profile updated", fiber.Map{
		"user": dto.NewUserResponse(user, true),
	})
}

// Search handles GET /api/users/search?q=... The route carries the optional
// gate: authenticated callers get presence info, anonymous callers do not.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	req, ok := validation.QueryOf[*dto.SearchUsersQuery](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	users, err := h.users.Search(c.UserContext(), req.Q, req.Limit)
	if err != nil {
		return err
	}

	_, authenticated := auth.PrincipalFromContext(c)
	results := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp := dto.NewUserResponse(&users[i], false)
		if !authenticated {
			resp.LastSeen = nil
		}
		results = append(results, resp)
	}

	return respond(c, http.StatusOK, "Search results", fiber.Map{
		"users": results,
	})
}
