package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToAppError_PassthroughAndDefaults(t *testing.T) {
	orig := NewAppError(CodeForbidden, "nope", http.StatusForbidden, nil)
	if got := ToAppError(orig); got != orig {
		t.Fatal("AppError was not passed through unchanged")
	}

	// Wrapped AppErrors are still recognized.
	wrapped := fmt.Errorf("handler: %w", orig)
	if got := ToAppError(wrapped); got.Code != CodeForbidden {
		t.Fatalf("wrapped code = %s, want %s", got.Code, CodeForbidden)
	}

	// A zero status is corrected to 500.
	zero := &AppError{Code: CodeInternal, Message: "boom"}
	if got := ToAppError(zero); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", got.HTTPStatus)
	}

	if ToAppError(nil) != nil {
		t.Fatal("nil should map to nil")
	}
}

func TestToAppError_DuplicateKey(t *testing.T) {
	tests := []struct {
		constraint string
		wantMsg    string
	}{
		{"users_email_key", "email already exists"},
		{"users_username_key", "username already exists"},
		{"users_email_idx", "email already exists"},
		{"", "value already exists"},
	}
	for _, tc := range tests {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
		got := ToAppError(fmt.Errorf("insert user: %w", pgErr))
		if got.Code != CodeDuplicateKey {
			t.Fatalf("constraint %q: code = %s, want %s", tc.constraint, got.Code, CodeDuplicateKey)
		}
		if got.HTTPStatus != http.StatusConflict {
			t.Fatalf("constraint %q: status = %d, want 409", tc.constraint, got.HTTPStatus)
		}
		if got.Message != tc.wantMsg {
			t.Fatalf("constraint %q: message = %q, want %q", tc.constraint, got.Message, tc.wantMsg)
		}
		if !got.IsOperational {
			t.Fatalf("constraint %q: duplicate key must be operational", tc.constraint)
		}
	}
}

func TestToAppError_OtherPgErrorIsInternal(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01"}
	got := ToAppError(pgErr)
	if got.Code != CodeInternal || got.IsOperational {
		t.Fatalf("got %+v, want non-operational internal error", got)
	}
	if got.Message != MsgServerError {
		t.Fatalf("message = %q, want generic server message", got.Message)
	}
}

func TestToAppError_NoRows(t *testing.T) {
	got := ToAppError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	if got.Code != CodeNotFound || got.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %+v, want 404 NOT_FOUND", got)
	}
}

func TestToAppError_JWT(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{jwt.ErrTokenExpired, CodeTokenExpired},
		{jwt.ErrTokenMalformed, CodeTokenInvalid},
		{jwt.ErrTokenSignatureInvalid, CodeTokenInvalid},
		{jwt.ErrTokenNotValidYet, CodeTokenInvalid},
	}
	for _, tc := range tests {
		got := ToAppError(tc.err)
		if got.Code != tc.wantCode {
			t.Fatalf("%v: code = %s, want %s", tc.err, got.Code, tc.wantCode)
		}
		if got.HTTPStatus != http.StatusUnauthorized {
			t.Fatalf("%v: status = %d, want 401", tc.err, got.HTTPStatus)
		}
	}
}

func TestToAppError_UnknownError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	got := ToAppError(cause)
	if got.Code != CodeInternal || got.IsOperational {
		t.Fatalf("got %+v, want non-operational internal", got)
	}
	if got.Message != MsgServerError {
		t.Fatalf("message = %q leaks the cause", got.Message)
	}
	if !errors.Is(got, cause) {
		t.Fatal("cause must remain reachable for logging")
	}
}

func TestFieldFromConstraint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users_email_key", "email"},
		{"users_username_key", "username"},
		{"conversations_participants_idx", "participants"},
		{"email", "email"},
		{"", "value"},
	}
	for _, tc := range tests {
		if got := fieldFromConstraint(tc.in); got != tc.want {
			t.Errorf("fieldFromConstraint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewRateLimited(t *testing.T) {
	err := NewRateLimited("slow down", 42)
	appErr := ToAppError(err)
	if appErr.HTTPStatus != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", appErr.HTTPStatus)
	}
	if got := appErr.Details["retryAfter"]; got != 42 {
		t.Fatalf("retryAfter = %v, want 42", got)
	}
}
