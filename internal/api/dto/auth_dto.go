package dto

import "strings"

// Schema names routes reference at registration time.
const (
	SchemaRegister             = "auth.register"
	SchemaLogin                = "auth.login"
	SchemaVerifyEmail          = "auth.verify_email"
	SchemaPasswordResetRequest = "auth.password_reset_request"
	SchemaPasswordResetConfirm = "auth.password_reset_confirm"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Password  string `json:"password" validate:"required,min=8,max=128,strongpass"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// Sanitize normalizes whitespace and email casing. Idempotent.
func (r *RegisterRequest) Sanitize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Sanitize normalizes the email. The password is never altered.
func (r *LoginRequest) Sanitize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// VerifyEmailQuery carries the verification token from the mail link.
type VerifyEmailQuery struct {
	Token string `query:"token" validate:"required"`
}

func (r *VerifyEmailQuery) Sanitize() {
	r.Token = strings.TrimSpace(r.Token)
}

// PasswordResetRequest asks for a reset mail.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PasswordResetRequest) Sanitize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// PasswordResetConfirm carries the reset token and replacement password.
type PasswordResetConfirm struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128,strongpass"`
}

func (r *PasswordResetConfirm) Sanitize() {
	r.Token = strings.TrimSpace(r.Token)
}

// AuthResponse is the token block returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
}
