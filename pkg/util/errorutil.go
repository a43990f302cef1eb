package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes for every failure kind the pipeline can produce.
const (
	CodeMissingAuthHeader   = "MISSING_AUTH_HEADER"
	CodeMalformedAuthHeader = "MALFORMED_AUTH_HEADER"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeMalformedIdentifier = "MALFORMED_IDENTIFIER"
	CodeDuplicateKey        = "DUPLICATE_KEY"
	CodeRateLimited         = "RATE_LIMITED"
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
)

// Client-facing messages shared across the service.
const (
	MsgUnauthorized       = "You are not authorized to perform this action"
	MsgTokenExpired       = "Token has expired"
	MsgInvalidToken       = "Invalid token"
	MsgMalformedAuth      = "Invalid authorization format. Use: Bearer <token>"
	MsgInvalidID          = "Invalid ID format"
	MsgServerError        = "An error occurred on the server. Please try again."
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailNotVerified   = "Please verify your email before logging in"
)

// AppError standardizes application errors. Operational errors are expected,
// recoverable conditions whose message is safe to show verbatim to a client;
// anything else is surfaced as a generic server error while the cause is logged.
type AppError struct {
	Code          string
	Message       string
	HTTPStatus    int
	Details       map[string]any
	IsOperational bool
	Err           error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an operational AppError.
func NewAppError(code, message string, status int, details map[string]any) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Details: details, IsOperational: true}
}

func NewMissingAuthHeader() error {
	return NewAppError(CodeMissingAuthHeader, MsgUnauthorized, http.StatusUnauthorized, nil)
}

func NewMalformedAuthHeader() error {
	return NewAppError(CodeMalformedAuthHeader, MsgMalformedAuth, http.StatusUnauthorized, nil)
}

func NewTokenExpired() error {
	return NewAppError(CodeTokenExpired, MsgTokenExpired, http.StatusUnauthorized, nil)
}

func NewTokenInvalid() error {
	return NewAppError(CodeTokenInvalid, MsgInvalidToken, http.StatusUnauthorized, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewAppError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewMalformedIdentifier() error {
	return NewAppError(CodeMalformedIdentifier, MsgInvalidID, http.StatusBadRequest, nil)
}

func NewConflict(field string) error {
	return NewAppError(CodeDuplicateKey, fmt.Sprintf("%s already exists", field), http.StatusConflict, nil)
}

func NewRateLimited(message string, retryAfterSeconds int) error {
	return NewAppError(CodeRateLimited, message, http.StatusTooManyRequests,
		map[string]any{"retryAfter": retryAfterSeconds})
}

func NewNotFound(resource string) error {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func NewForbidden(message string) error {
	return NewAppError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewUnauthorized(message string) error {
	return NewAppError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &AppError{
		Code:       CodeInternal,
		Message:    MsgServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToAppError converts any failure into an AppError, reclassifying known
// lower-level causes onto the taxonomy. Unknown errors become non-operational
// internal faults carrying the generic server message.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus == 0 {
			appErr.HTTPStatus = http.StatusInternalServerError
		}
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		field := fieldFromConstraint(pgErr.ConstraintName)
		return &AppError{
			Code:          CodeDuplicateKey,
			Message:       fmt.Sprintf("%s already exists", field),
			HTTPStatus:    http.StatusConflict,
			IsOperational: true,
			Err:           err,
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{
			Code:          CodeNotFound,
			Message:       "resource not found",
			HTTPStatus:    http.StatusNotFound,
			IsOperational: true,
			Err:           err,
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return &AppError{
			Code:          CodeTokenExpired,
			Message:       MsgTokenExpired,
			HTTPStatus:    http.StatusUnauthorized,
			IsOperational: true,
			Err:           err,
		}
	}
	if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenNotValidYet) || errors.Is(err, jwt.ErrSignatureInvalid) {
		return &AppError{
			Code:          CodeTokenInvalid,
			Message:       MsgInvalidToken,
			HTTPStatus:    http.StatusUnauthorized,
			IsOperational: true,
			Err:           err,
		}
	}

	return &AppError{
		Code:       CodeInternal,
		Message:    MsgServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// fieldFromConstraint extracts the offending column from a unique-constraint
// name shaped like "users_email_key".
func fieldFromConstraint(constraint string) string {
	if constraint == "" {
		return "value"
	}
	name := strings.TrimSuffix(constraint, "_key")
	name = strings.TrimSuffix(name, "_idx")
	if i := strings.Index(name, "_"); i >= 0 && i+1 < len(name) {
		return name[i+1:]
	}
	return name
}
