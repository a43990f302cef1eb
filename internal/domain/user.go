package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// Presence represents realtime availability states.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
	PresenceAway    Presence = "away"
)

// AuthProvider identifies how an account was created.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User is the domain model for chat accounts.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	ProfileImage  string
	Provider      AuthProvider
	ProviderID    string
	EmailVerified bool
	Status        UserStatus
	LastSeen      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
