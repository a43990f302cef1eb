package domain

// TokenKind determines a token's claim shape and expiry.
type TokenKind string

const (
	TokenKindAccess       TokenKind = "access"
	TokenKindVerification TokenKind = "verification"
	TokenKindReset        TokenKind = "reset"
)

// Principal is the authenticated identity attached to a request after a
// successful token verification. Request-scoped; never persisted.
type Principal struct {
	UserID    string
	Email     string
	TokenKind TokenKind
}
