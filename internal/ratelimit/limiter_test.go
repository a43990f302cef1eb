package ratelimit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

func TestMemoryStore_FixedWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	window := time.Minute

	for i := 1; i <= 3; i++ {
		count, reset, err := store.Incr(context.Background(), "k", window)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if count != i {
			t.Fatalf("count = %d, want %d", count, i)
		}
		wantReset := time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC)
		if !reset.Equal(wantReset) {
			t.Fatalf("reset = %v, want %v", reset, wantReset)
		}
	}

	// Crossing the bucket boundary resets the count.
	now = now.Add(window)
	count, _, err := store.Incr(context.Background(), "k", window)
	if err != nil {
		t.Fatalf("incr after window: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after window = %d, want 1", count)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < 4; i++ {
		if _, _, err := store.Incr(context.Background(), "a", time.Minute); err != nil {
			t.Fatalf("incr a: %v", err)
		}
	}
	count, _, err := store.Incr(context.Background(), "b", time.Minute)
	if err != nil {
		t.Fatalf("incr b: %v", err)
	}
	if count != 1 {
		t.Fatalf("count for fresh key = %d, want 1", count)
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()
	const workers = 50
	const limit = 5

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, _, err := store.Incr(context.Background(), "shared", time.Minute)
			if err != nil {
				t.Errorf("incr: %v", err)
				return
			}
			if count <= limit {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Fatalf("allowed = %d, want exactly %d", allowed, limit)
	}
}

func newTestApp(limiter *Limiter, policy Policy) *fiber.App {
	app := fiber.New()
	// Minimal stand-in for the service's error normalizer.
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		appErr := apperrors.ToAppError(err)
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{
			"success":    false,
			"message":    appErr.Message,
			"statusCode": appErr.HTTPStatus,
		})
	})
	app.Get("/gated", limiter.Gate(policy), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestLimiter_AllowsThenRejects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewMemoryStore().WithClock(clock)
	limiter := NewLimiter(store, zap.NewNop(), false).WithClock(clock)

	policy := Policy{Class: ClassAuth, Max: 5, Window: 15 * time.Minute, Message: "too many attempts"}
	app := newTestApp(limiter, policy)

	for i := 1; i <= 5; i++ {
		resp := doRequest(t, app, "10.0.0.1")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
		if got := resp.Header.Get("X-RateLimit-Limit"); got != "5" {
			t.Fatalf("request %d: X-RateLimit-Limit = %q, want 5", i, got)
		}
	}

	resp := doRequest(t, app, "10.0.0.1")
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("6th request: status = %d, want 429", resp.StatusCode)
	}
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" || retryAfter == "0" {
		t.Fatalf("Retry-After = %q, want positive seconds", retryAfter)
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 0", got)
	}

	var body struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Message != "too many attempts" || body.StatusCode != 429 {
		t.Fatalf("body = %+v", body)
	}

	// A different client still has its own budget.
	other := doRequest(t, app, "10.0.0.2")
	if other.StatusCode != fiber.StatusOK {
		t.Fatalf("other client: status = %d, want 200", other.StatusCode)
	}

	// After the window elapses the original client is allowed again.
	now = now.Add(15*time.Minute + time.Second)
	resp = doRequest(t, app, "10.0.0.1")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("post-window request: status = %d, want 200", resp.StatusCode)
	}
}

func TestLimiter_DisabledBypassesCounting(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, zap.NewNop(), true)

	policy := Policy{Class: ClassAuth, Max: 1, Window: time.Minute, Message: "too many"}
	app := newTestApp(limiter, policy)

	for i := 0; i < 10; i++ {
		resp := doRequest(t, app, "10.0.0.1")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d with limiter disabled: status = %d, want 200", i, resp.StatusCode)
		}
	}
}

func TestLimiter_ClassesDoNotShareBudgets(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, zap.NewNop(), false)

	authPolicy := Policy{Class: ClassAuth, Max: 1, Window: time.Minute, Message: "auth limited"}
	generalPolicy := Policy{Class: ClassGeneral, Max: 5, Window: time.Minute, Message: "general limited"}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			appErr := apperrors.ToAppError(err)
			return c.SendStatus(appErr.HTTPStatus)
		}
		return nil
	})
	app.Get("/auth", limiter.Gate(authPolicy), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/general", limiter.Gate(generalPolicy), func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(fiber.MethodGet, "/auth", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first auth request blocked: %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/general", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	if resp, _ := app.Test(req); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("general request consumed auth budget: %d", resp.StatusCode)
	}
}

func doRequest(t *testing.T, app *fiber.App, clientIP string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/gated", nil)
	req.Header.Set("X-Forwarded-For", clientIP)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}
