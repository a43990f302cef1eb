package validation

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

const (
	bodyKey  = "validated_body"
	queryKey = "validated_query"
)

// Gate builds validation middleware from a schema registry.
type Gate struct {
	registry *Registry
	logger   *zap.Logger
}

// NewGate constructs the gate.
func NewGate(registry *Registry, logger *zap.Logger) *Gate {
	return &Gate{registry: registry, logger: logger}
}

// Body validates the request body against the named schema. On success the
// sanitized payload is stored on the request and downstream code never
// re-parses; on failure the response carries per-field errors.
func (g *Gate) Body(schema string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, err := g.registry.New(schema)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := c.BodyParser(payload); err != nil {
			return apperrors.NewValidationError("Validation failed",
				map[string]any{"errors": map[string]string{"body": "request body must be valid JSON"}})
		}
		return g.run(c, payload, bodyKey, schema)
	}
}

// Query validates query parameters against the named schema.
func (g *Gate) Query(schema string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, err := g.registry.New(schema)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := c.QueryParser(payload); err != nil {
			return apperrors.NewValidationError("Validation failed",
				map[string]any{"errors": map[string]string{"query": "invalid query parameters"}})
		}
		return g.run(c, payload, queryKey, schema)
	}
}

func (g *Gate) run(c *fiber.Ctx, payload Sanitizable, localsKey, schema string) error {
	payload.Sanitize()
	if fieldErrs := g.registry.Check(payload); len(fieldErrs) > 0 {
		g.logger.Warn("validation failed",
			zap.String("schema", schema),
			zap.Int("fields", len(fieldErrs)))
		return apperrors.NewValidationError("Validation failed", map[string]any{"errors": fieldErrs})
	}
	c.Locals(localsKey, payload)
	return c.Next()
}

// BodyOf returns the sanitized body payload stored by a Body gate.
func BodyOf[T Sanitizable](c *fiber.Ctx) (T, bool) {
	val, ok := c.Locals(bodyKey).(T)
	return val, ok
}

// QueryOf returns the sanitized query payload stored by a Query gate.
func QueryOf[T Sanitizable](c *fiber.Ctx) (T, bool) {
	val, ok := c.Locals(queryKey).(T)
	return val, ok
}
