package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/chat-service/internal/domain"
)

// Token lifetimes per kind.
const (
	AccessTokenTTL       = 15 * time.Minute
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// Issuer and audience embedded in access tokens.
const (
	TokenIssuer   = "my-chat-app"
	TokenAudience = "web"
)

// Sentinel verification failures. ErrTokenExpired covers only expiry; every
// other verification failure maps onto ErrTokenInvalid.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims describes the JWT payload for all three token kinds. Email is only
// populated on access tokens.
type Claims struct {
	UserID string           `json:"userId"`
	Email  string           `json:"email,omitempty"`
	Kind   domain.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-bounded tokens. Verification
// is stateless: validity is purely a function of signature and expiry, so no
// storage lookup happens and no revocation list exists.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService builds a service around the process-wide signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the clock, for tests.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	ts.now = now
	return ts
}

// IssueAccess signs an access token carrying the user's id and email.
func (ts *TokenService) IssueAccess(userID, email string) (string, error) {
	now := ts.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Kind:   domain.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}
	return ts.sign(claims)
}

// IssueVerification signs an email-verification token.
func (ts *TokenService) IssueVerification(userID string) (string, error) {
	return ts.issuePlain(userID, domain.TokenKindVerification, VerificationTokenTTL)
}

// IssueReset signs a password-reset token.
func (ts *TokenService) IssueReset(userID string) (string, error) {
	return ts.issuePlain(userID, domain.TokenKindReset, ResetTokenTTL)
}

func (ts *TokenService) issuePlain(userID string, kind domain.TokenKind, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return ts.sign(claims)
}

func (ts *TokenService) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry against the current time and
// that the token carries the expected kind. No side effects.
func (ts *TokenService) Verify(tokenStr string, expected domain.TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != expected {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
