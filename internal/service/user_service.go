package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/domain"
	"github.com/spec-kit/chat-service/internal/events"
	"github.com/spec-kit/chat-service/internal/persistence"
	"github.com/spec-kit/chat-service/internal/repository"
)

// UserService covers profile, search and presence concerns.
type UserService struct {
	users      repository.UserRepository
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, redis *persistence.Redis, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, redis: redis, dispatcher: dispatcher, logger: logger}
}

// GetProfile loads the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies profile edits.
func (s *UserService) UpdateProfile(ctx context.Context, userID, firstName, lastName, profileImage string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if profileImage != "" {
		user.ProfileImage = profileImage
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds active accounts by username or email fragment.
func (s *UserService) Search(ctx context.Context, term string, limit int) ([]domain.User, error) {
	return s.users.Search(ctx, term, limit)
}

// TouchPresence records activity: last_seen in the database and a short-lived
// online marker in Redis. Best effort; failures are logged, not returned.
func (s *UserService) TouchPresence(ctx context.Context, userID string) {
	if err := s.users.TouchLastSeen(ctx, userID); err != nil {
		s.logger.Warn("touch last_seen failed", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.redis.SetPresence(ctx, userID, domain.PresenceOnline); err != nil {
		s.logger.Warn("presence update failed", zap.String("user_id", userID), zap.Error(err))
	}
	s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventUserOnline,
		ActorID: userID,
		Payload: events.PresencePayload{UserID: userID, Presence: domain.PresenceOnline},
	})
}

// GetPresence returns a user's availability.
func (s *UserService) GetPresence(ctx context.Context, userID string) (domain.Presence, error) {
	return s.redis.GetPresence(ctx, userID)
}
