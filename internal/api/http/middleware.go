package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/config"
	"github.com/spec-kit/chat-service/internal/observability"
	apperrors "github.com/spec-kit/chat-service/pkg/util"
)

// RegisterMiddlewares attaches the global middleware stack. The error
// normalizer wraps everything below it, so any failure raised by a gate or a
// handler resolves to a normalized response and never a crash.
func RegisterMiddlewares(app *fiber.App, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) {
	if timeout := cfg.App.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(corsMiddleware(cfg.CORS))
	app.Use(errorNormalizer(logger, metrics, cfg.App.IsDevelopment()))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func corsMiddleware(cfg config.CORSConfig) fiber.Handler {
	origins := ""
	for i, o := range cfg.AllowedOrigins {
		if i > 0 {
			origins += ","
		}
		origins += o
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,X-Requested-With,Accept,Origin",
		AllowCredentials: true,
		MaxAge:           3600,
	})
}

// errorNormalizer is the pipeline's floor: every failure raised upstream is
// reclassified onto the error taxonomy and emitted as one response shape.
// Diagnostic detail is included only in development mode; the raw failure is
// logged in every mode.
func errorNormalizer(logger *zap.Logger, metrics *observability.Metrics, development bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			appErr := apperrors.ToAppError(err)
			metrics.RecordError(c.Path(), c.Method(), appErr.Code)

			if appErr.HTTPStatus >= 500 || !appErr.IsOperational {
				logger.Error("request failed",
					zap.String("code", appErr.Code),
					zap.Error(appErr))
			} else {
				logger.Warn("request rejected",
					zap.String("code", appErr.Code),
					zap.String("message", appErr.Message))
			}

			response := fiber.Map{
				"success":    false,
				"message":    appErr.Message,
				"statusCode": appErr.HTTPStatus,
			}
			if fieldErrs, ok := appErr.Details["errors"]; ok {
				response["errors"] = fieldErrs
			}
			if development {
				detail := fiber.Map{"name": appErr.Code}
				if appErr.Err != nil {
					detail["detail"] = appErr.Err.Error()
				}
				response["error"] = detail
			}

			c.Status(appErr.HTTPStatus)
			_ = c.JSON(response)
			err = nil
		}()
		return c.Next()
	}
}

// notFoundHandler terminates unmatched routes. Registered after all routes.
func notFoundHandler(c *fiber.Ctx) error {
	return apperrors.NewAppError(apperrors.CodeNotFound,
		"Route "+c.OriginalURL()+" not found", fiber.StatusNotFound, nil)
}
