package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/chat-service/internal/domain"
)

const (
	SchemaUpdateProfile = "users.update_profile"
	SchemaSearchUsers   = "users.search"
)

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	FirstName    string `json:"firstName" validate:"max=50"`
	LastName     string `json:"lastName" validate:"max=50"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

func (r *UpdateProfileRequest) Sanitize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.ProfileImage = strings.TrimSpace(r.ProfileImage)
}

// SearchUsersQuery carries the search term.
type SearchUsersQuery struct {
	Q     string `query:"q" validate:"required,min=2,max=64"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

func (r *SearchUsersQuery) Sanitize() {
	r.Q = strings.TrimSpace(r.Q)
	if r.Limit == 0 {
		r.Limit = 20
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email,omitempty"`
	Username      string     `json:"username"`
	FirstName     string     `json:"firstName,omitempty"`
	LastName      string     `json:"lastName,omitempty"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	EmailVerified bool       `json:"emailVerified"`
	LastSeen      *time.Time `json:"lastSeen,omitempty"`
}

// NewUserResponse maps a domain user onto the public shape. When private is
// false the email is withheld.
func NewUserResponse(u *domain.User, private bool) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		ProfileImage:  u.ProfileImage,
		EmailVerified: u.EmailVerified,
		LastSeen:      u.LastSeen,
	}
	if private {
		resp.Email = u.Email
	}
	return resp
}
