package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-service/internal/api/dto"
	"github.com/spec-kit/chat-service/internal/api/http/handlers"
	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/ratelimit"
	"github.com/spec-kit/chat-service/internal/validation"
)

// authMode declares what a route expects from the auth gate.
type authMode int

const (
	authNone authMode = iota
	authRequired
	authOptional
)

// schemaSource declares which request part a schema validates.
type schemaSource int

const (
	sourceNone schemaSource = iota
	sourceBody
	sourceQuery
)

// route is one explicit pipeline declaration: rate-limit class, validation
// schema and auth mode are part of the route definition, not an artifact of
// call-site ordering.
type route struct {
	method  string
	path    string
	class   ratelimit.Class
	schema  string
	source  schemaSource
	auth    authMode
	handler fiber.Handler
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Messages      *handlers.MessagesHandler
	Notifications *handlers.NotificationsHandler

	AuthGate       *auth.Gate
	ValidationGate *validation.Gate
	Limiter        *ratelimit.Limiter
	Policies       map[ratelimit.Class]ratelimit.Policy
}

// RegisterRoutes wires the HTTP surface. Every route's pipeline runs in the
// fixed order rate-limit, validate, authenticate, handle; the declarations are
// checked at startup so a route referencing an unknown class fails before the
// server accepts traffic.
func RegisterRoutes(app *fiber.App, registry *validation.Registry, cfg RouteConfig) error {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	registerSchemas(registry)

	routes := []route{
		{fiber.MethodPost, "/api/auth/register", ratelimit.ClassAuth, dto.SchemaRegister, sourceBody, authNone, cfg.Auth.Register},
		{fiber.MethodPost, "/api/auth/login", ratelimit.ClassAuth, dto.SchemaLogin, sourceBody, authNone, cfg.Auth.Login},
		{fiber.MethodPost, "/api/auth/logout", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Auth.Logout},
		{fiber.MethodGet, "/api/auth/verify-email", ratelimit.ClassAuth, dto.SchemaVerifyEmail, sourceQuery, authNone, cfg.Auth.VerifyEmail},
		{fiber.MethodPost, "/api/auth/password/reset/request", ratelimit.ClassAuth, dto.SchemaPasswordResetRequest, sourceBody, authNone, cfg.Auth.RequestPasswordReset},
		{fiber.MethodPost, "/api/auth/password/reset/confirm", ratelimit.ClassAuth, dto.SchemaPasswordResetConfirm, sourceBody, authNone, cfg.Auth.ConfirmPasswordReset},

		{fiber.MethodGet, "/api/users/me", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Users.Me},
		{fiber.MethodPut, "/api/users/me", ratelimit.ClassGeneral, dto.SchemaUpdateProfile, sourceBody, authRequired, cfg.Users.UpdateMe},
		{fiber.MethodGet, "/api/users/search", ratelimit.ClassGeneral, dto.SchemaSearchUsers, sourceQuery, authOptional, cfg.Users.Search},

		{fiber.MethodPost, "/api/messages", ratelimit.ClassMessaging, dto.SchemaSendMessage, sourceBody, authRequired, cfg.Messages.Send},
		{fiber.MethodGet, "/api/messages/conversations", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Messages.ListConversations},
		{fiber.MethodGet, "/api/messages/conversations/:id", ratelimit.ClassGeneral, dto.SchemaListConversation, sourceQuery, authRequired, cfg.Messages.ListConversation},
		{fiber.MethodPost, "/api/messages/:id/read", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Messages.MarkRead},
		{fiber.MethodPost, "/api/messages/:id/delivered", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Messages.MarkDelivered},

		{fiber.MethodGet, "/api/notifications", ratelimit.ClassGeneral, dto.SchemaListNotifications, sourceQuery, authRequired, cfg.Notifications.List},
		{fiber.MethodPost, "/api/notifications/:id/read", ratelimit.ClassGeneral, "", sourceNone, authRequired, cfg.Notifications.MarkRead},
	}

	for _, rt := range routes {
		chain, err := buildChain(rt, cfg)
		if err != nil {
			return fmt.Errorf("route %s %s: %w", rt.method, rt.path, err)
		}
		app.Add(rt.method, rt.path, chain...)
	}

	app.Use(notFoundHandler)
	return nil
}

func buildChain(rt route, cfg RouteConfig) ([]fiber.Handler, error) {
	policy, ok := cfg.Policies[rt.class]
	if !ok {
		return nil, fmt.Errorf("unknown rate-limit class %q", rt.class)
	}

	chain := []fiber.Handler{cfg.Limiter.Gate(policy)}

	switch rt.source {
	case sourceBody:
		chain = append(chain, cfg.ValidationGate.Body(rt.schema))
	case sourceQuery:
		chain = append(chain, cfg.ValidationGate.Query(rt.schema))
	case sourceNone:
		if rt.schema != "" {
			return nil, fmt.Errorf("schema %q declared without a source", rt.schema)
		}
	}

	switch rt.auth {
	case authRequired:
		chain = append(chain, cfg.AuthGate.Require)
	case authOptional:
		chain = append(chain, cfg.AuthGate.Optional)
	}

	return append(chain, rt.handler), nil
}

func registerSchemas(registry *validation.Registry) {
	registry.Register(dto.SchemaRegister, func() validation.Sanitizable { return &dto.RegisterRequest{} })
	registry.Register(dto.SchemaLogin, func() validation.Sanitizable { return &dto.LoginRequest{} })
	registry.Register(dto.SchemaVerifyEmail, func() validation.Sanitizable { return &dto.VerifyEmailQuery{} })
	registry.Register(dto.SchemaPasswordResetRequest, func() validation.Sanitizable { return &dto.PasswordResetRequest{} })
	registry.Register(dto.SchemaPasswordResetConfirm, func() validation.Sanitizable { return &dto.PasswordResetConfirm{} })
	registry.Register(dto.SchemaUpdateProfile, func() validation.Sanitizable { return &dto.UpdateProfileRequest{} })
	registry.Register(dto.SchemaSearchUsers, func() validation.Sanitizable { return &dto.SearchUsersQuery{} })
	registry.Register(dto.SchemaSendMessage, func() validation.Sanitizable { return &dto.SendMessageRequest{} })
	registry.Register(dto.SchemaListConversation, func() validation.Sanitizable { return &dto.ListConversationQuery{} })
	registry.Register(dto.SchemaListNotifications, func() validation.Sanitizable { return &dto.ListNotificationsQuery{} })
}
