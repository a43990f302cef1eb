package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Sanitizable is implemented by request payloads that normalize their own
// fields (trimming, lowercasing) before validation. Sanitization must be
// idempotent: applying it to already-sanitized input is a no-op.
type Sanitizable interface {
	Sanitize()
}

// Registry maps schema names to payload prototypes. Routes reference schemas
// by name at registration time; the gate itself knows nothing about field
// semantics beyond the declared tags.
type Registry struct {
	mu       sync.RWMutex
	validate *validator.Validate
	schemas  map[string]func() Sanitizable
}

// NewRegistry creates an empty registry around one validator instance.
func NewRegistry() *Registry {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpass", strongPassword)
	return &Registry{
		validate: v,
		schemas:  make(map[string]func() Sanitizable),
	}
}

// strongPassword requires at least one uppercase letter, one lowercase letter
// and one digit. Length bounds are declared separately via min/max tags.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// Register binds a schema name to a payload factory.
func (r *Registry) Register(name string, factory func() Sanitizable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = factory
}

// New instantiates a fresh payload for the named schema.
func (r *Registry) New(name string) (Sanitizable, error) {
	r.mu.RLock()
	factory, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown validation schema %q", name)
	}
	return factory(), nil
}

// Check validates a sanitized payload and returns per-field error messages,
// keyed by field name. An empty map means the payload is valid.
func (r *Registry) Check(payload Sanitizable) map[string]string {
	err := r.validate.Struct(payload)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": "invalid payload"}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		out[field] = fieldMessage(field, fe)
	}
	return out
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "strongpass":
		return "Password must be at least 8 characters with uppercase, lowercase, and number"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
