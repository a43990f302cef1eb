package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/config"
	"github.com/spec-kit/chat-service/internal/domain"
	"github.com/spec-kit/chat-service/internal/repository"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// AuthService coordinates registration, login and credential recovery flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	mailer     Mailer
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenService
	Mailer   Mailer
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		mailer:     deps.Mailer,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and mails a verification link. The account
// stays unverified until the link is followed.
func (s *AuthService) Register(ctx context.Context, email, username, password, firstName, lastName string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Provider:     domain.ProviderLocal,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	verifyToken, err := s.tokens.IssueVerification(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendVerification(ctx, user.Email, verifyToken); err != nil {
		s.logger.Warn("verification mail failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// VerifyEmail validates a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.tokens.Verify(tokenStr, domain.TokenKindVerification)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpired()
		}
		return nil, apperrors.NewTokenInvalid()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		user.EmailVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return user, nil
}

// Login authenticates an account and issues an access token. Accounts with an
// unverified email cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized(apperrors.MsgInvalidCredentials)
		}
		return nil, "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized(apperrors.MsgInvalidCredentials)
	}
	if !user.EmailVerified {
		return nil, "", apperrors.NewForbidden(apperrors.MsgEmailNotVerified)
	}
	if user.Status == domain.UserStatusBanned {
		return nil, "", apperrors.NewForbidden(apperrors.MsgUnauthorized)
	}

	token, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, token, nil
}

// Logout is a no-op for stateless tokens beyond the audit entry; tokens remain
// valid until natural expiry because no revocation list exists.
func (s *AuthService) Logout(_ context.Context, userID string) {
	s.logger.Info("user logged out", zap.String("user_id", userID))
}

// RequestPasswordReset mails a reset link when the email belongs to an
// account. Unknown emails succeed silently so the endpoint cannot be used to
// probe which addresses are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	resetToken, err := s.tokens.IssueReset(user.ID)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		s.logger.Warn("reset mail failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset validates a reset token and replaces the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	claims, err := s.tokens.Verify(tokenStr, domain.TokenKindReset)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return apperrors.NewTokenExpired()
		}
		return apperrors.NewTokenInvalid()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}
