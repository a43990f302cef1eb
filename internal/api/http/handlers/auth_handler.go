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

// Success messages for the auth flows.
const (
	msgRegistered        = "Registration successful! Please check your email to verify your account."
	msgEmailVerified     = "Email verified successfully! You can now log in."
	msgLoginSuccess      = "Login successful! Welcome back."
	msgLogoutSuccess     = "You have been logged out successfully."
	msgResetMailSent     = "Password reset email sent! Please check your inbox."
	msgPasswordResetDone = "Password has been reset successfully! You can now log in with your new password."
)

// AuthHandler exposes account lifecycle endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req, ok := validation.BodyOf[*dto.RegisterRequest](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, err := h.auth.Register(c.UserContext(), req.Email, req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, msgRegistered, fiber.Map{
		"user": dto.NewUserResponse(user, true),
	})
}

// VerifyEmail handles GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	req, ok := validation.QueryOf[*dto.VerifyEmailQuery](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, err := h.auth.VerifyEmail(c.UserContext(), req.Token)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, msgEmailVerified, fiber.Map{
		"user": dto.NewUserResponse(user, true),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req, ok := validation.BodyOf[*dto.LoginRequest](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, msgLoginSuccess, fiber.Map{
		"user": dto.NewUserResponse(user, true),
		"auth": dto.AuthResponse{Token: token},
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthHeader()
	}
	h.auth.Logout(c.UserContext(), principal.UserID)
	return respond(c, http.StatusOK, msgLogoutSuccess, nil)
}

// RequestPasswordReset handles POST /api/auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	req, ok := validation.BodyOf[*dto.PasswordResetRequest](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, msgResetMailSent, nil)
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	req, ok := validation.BodyOf[*dto.PasswordResetConfirm](c)
	if !ok {
		return apperrors.NewInternalError(nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, msgPasswordResetDone, nil)
}
