package validation

import (
	"strings"
	"testing"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=128,strongpass"`
}

func (p *signupPayload) Sanitize() {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Username = strings.TrimSpace(p.Username)
}

func newSignupRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Register("test.signup", func() Sanitizable { return &signupPayload{} })
	return r
}

func TestRegistry_UnknownSchema(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New("nope"); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestRegistry_ValidPayload(t *testing.T) {
	r := newSignupRegistry(t)
	p := &signupPayload{Email: "user@example.com", Username: "alice", Password: "Sup3rsecret"}
	p.Sanitize()
	if errs := r.Check(p); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestRegistry_FieldErrors(t *testing.T) {
	r := newSignupRegistry(t)

	tests := []struct {
		name    string
		payload signupPayload
		field   string
		want    string
	}{
		{
			name:    "missing email",
			payload: signupPayload{Username: "alice", Password: "Sup3rsecret"},
			field:   "email",
			want:    "email is required",
		},
		{
			name:    "bad email format",
			payload: signupPayload{Email: "not-an-email", Username: "alice", Password: "Sup3rsecret"},
			field:   "email",
			want:    "email must be a valid email address",
		},
		{
			name:    "username too short",
			payload: signupPayload{Email: "user@example.com", Username: "ab", Password: "Sup3rsecret"},
			field:   "username",
			want:    "username must be at least 3 characters",
		},
		{
			name:    "password all lowercase",
			payload: signupPayload{Email: "user@example.com", Username: "alice", Password: "weakpassword1"},
			field:   "password",
			want:    "Password must be at least 8 characters with uppercase, lowercase, and number",
		},
		{
			name:    "password no digit",
			payload: signupPayload{Email: "user@example.com", Username: "alice", Password: "NoDigitsHere"},
			field:   "password",
			want:    "Password must be at least 8 characters with uppercase, lowercase, and number",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.payload
			p.Sanitize()
			errs := r.Check(&p)
			got, ok := errs[tc.field]
			if !ok {
				t.Fatalf("no error for field %q, got %v", tc.field, errs)
			}
			if got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRegistry_MultipleFieldErrors(t *testing.T) {
	r := newSignupRegistry(t)
	p := &signupPayload{}
	errs := r.Check(p)
	for _, field := range []string{"email", "username", "password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for field %q: %v", field, errs)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	p := &signupPayload{Email: "  User@Example.COM ", Username: " alice ", Password: "Sup3rsecret"}
	p.Sanitize()
	first := *p
	p.Sanitize()
	if *p != first {
		t.Fatalf("second sanitize changed payload: %+v vs %+v", *p, first)
	}
	if p.Email != "user@example.com" || p.Username != "alice" {
		t.Fatalf("sanitize result: %+v", *p)
	}
}
