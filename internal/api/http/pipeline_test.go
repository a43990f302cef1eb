package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/api/dto"
	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/observability"
	"github.com/spec-kit/chat-service/internal/validation"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Errors     map[string]string `json:"errors"`
	Error      *struct {
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

func newPipelineApp(t *testing.T, development bool) (*fiber.App, *auth.TokenService) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenService(testSecret)
	authGate := auth.NewGate(tokens, logger)

	registry := validation.NewRegistry()
	registry.Register(dto.SchemaRegister, func() validation.Sanitizable { return &dto.RegisterRequest{} })
	valGate := validation.NewGate(registry, logger)

	app := fiber.New()
	app.Use(errorNormalizer(logger, metrics, development))

	app.Get("/protected", authGate.Require, func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			t.Error("protected handler ran without a principal")
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"success": true, "userId": principal.UserID})
	})

	app.Get("/open", authGate.Optional, func(c *fiber.Ctx) error {
		_, authed := auth.PrincipalFromContext(c)
		return c.JSON(fiber.Map{"success": true, "authenticated": authed})
	})

	app.Post("/register", valGate.Body(dto.SchemaRegister), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("handler exploded")
	})

	app.Get("/fail", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("nope")
	})

	app.Use(notFoundHandler)
	return app, tokens
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return env
}

func TestPipeline_MissingAuthHeader(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Success || env.Message != apperrors.MsgUnauthorized || env.StatusCode != 401 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestPipeline_MalformedAuthHeader(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	for _, header := range []string{"Token abc123", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, header)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		if env.Message != apperrors.MsgMalformedAuth {
			t.Fatalf("header %q: message = %q", header, env.Message)
		}
	}
}

func TestPipeline_ExpiredToken(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	// Issue with a clock two hours in the past so the 15 minute lifetime has
	// long elapsed by real verification time.
	past := time.Now().Add(-2 * time.Hour)
	issuer := auth.NewTokenService(testSecret).WithClock(func() time.Time { return past })
	token, err := issuer.IssueAccess("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != apperrors.MsgTokenExpired {
		t.Fatalf("message = %q, want %q", env.Message, apperrors.MsgTokenExpired)
	}
}

func TestPipeline_ValidToken(t *testing.T) {
	app, tokens := newPipelineApp(t, false)

	token, err := tokens.IssueAccess("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Success bool   `json:"success"`
		UserID  string `json:"userId"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.UserID != "user-1" {
		t.Fatalf("body = %+v", body)
	}
}

func TestPipeline_OptionalGate(t *testing.T) {
	app, tokens := newPipelineApp(t, false)

	check := func(header string, wantAuthed bool) {
		t.Helper()
		req := httptest.NewRequest(fiber.MethodGet, "/open", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("header %q: status = %d, want 200", header, resp.StatusCode)
		}
		var body struct {
			Authenticated bool `json:"authenticated"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Authenticated != wantAuthed {
			t.Fatalf("header %q: authenticated = %v, want %v", header, body.Authenticated, wantAuthed)
		}
	}

	check("", false)
	check("Bearer garbage", false)
	check("Token wrong-scheme", false)

	token, err := tokens.IssueAccess("user-1", "user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	check("Bearer "+token, true)
}

func TestPipeline_ValidationFailure(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	body := strings.NewReader(`{"email":"not-an-email","username":"ab","password":"weak"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/register", body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != "Validation failed" {
		t.Fatalf("message = %q", env.Message)
	}
	for _, field := range []string{"email", "username", "password"} {
		if env.Errors[field] == "" {
			t.Errorf("missing field error for %q: %v", field, env.Errors)
		}
	}
}

func TestPipeline_ValidationPasses(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	body := strings.NewReader(`{"email":" User@Example.com ","username":"alice","password":"Sup3rsecret"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/register", body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
}

func TestPipeline_PanicRecovery(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	req := httptest.NewRequest(fiber.MethodGet, "/boom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != apperrors.MsgServerError {
		t.Fatalf("message = %q leaks panic detail", env.Message)
	}
}

func TestPipeline_DevelopmentDetail(t *testing.T) {
	devApp, _ := newPipelineApp(t, true)
	prodApp, _ := newPipelineApp(t, false)

	req := httptest.NewRequest(fiber.MethodGet, "/fail", nil)
	resp, err := devApp.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Name != apperrors.CodeForbidden {
		t.Fatalf("development envelope lacks error block: %+v", env)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/fail", nil)
	resp, err = prodApp.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	env = decodeEnvelope(t, resp)
	if env.Error != nil {
		t.Fatalf("production envelope exposes error block: %+v", env)
	}
}

func TestPipeline_UnknownRoute(t *testing.T) {
	app, _ := newPipelineApp(t, false)

	req := httptest.NewRequest(fiber.MethodGet, "/nowhere", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Message != "Route /nowhere not found" {
		t.Fatalf("message = %q", env.Message)
	}
}
