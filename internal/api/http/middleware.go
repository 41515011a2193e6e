package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/observability"
	"github.com/ciplastic/support-tickets/pkg/util"
)

// RequestIDHeader carries the per-request correlation id. Incoming values
// are honored so upstream proxies can trace through.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RegisterMiddlewares attaches the global chain: request id, deadline,
// error translation, then request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestIDMiddleware())
	if timeout > 0 {
		app.Use(deadlineMiddleware(timeout))
	}
	app.Use(errorTranslationMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

func deadlineMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorTranslationMiddleware converts any error or panic escaping a handler
// into the JSON error envelope and records it in the error counters.
func errorTranslationMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String(requestIDKey, requestID(c)),
					zap.ByteString("stack", debug.Stack()))
				err = util.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := util.ToDomainError(err)
			if metrics != nil {
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			}
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed",
					zap.String(requestIDKey, requestID(c)),
					zap.Error(domainErr))
			}
			err = writeDomainError(c, domainErr)
		}()
		return c.Next()
	}
}

func writeDomainError(c *fiber.Ctx, domainErr *util.DomainError) error {
	payload := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		payload["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": payload})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
