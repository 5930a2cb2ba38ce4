package http

import (
	"context"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/ratelimit"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// ActorHeader carries the acting principal's id. Authenticating it is an
// upstream concern; this service consumes it as a given.
const ActorHeader = "X-Actor-ID"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(actorMiddleware())
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func actorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor := c.Get(ActorHeader); actor != "" {
			c.Locals(handlers.ActorLocalKey, actor)
		}
		return c.Next()
	}
}

// RateLimitMiddleware admits or rejects requests per client key and exposes
// the window state through X-RateLimit headers. The key is the client IP,
// suffixed with the actor id when one is present.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if actor, _ := c.Locals(handlers.ActorLocalKey).(string); actor != "" {
			key += ":" + actor
		}

		decision, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			// A broken counter store must not take writes down with it.
			logger.Warn("rate limiter unavailable, admitting request", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			seconds := int(decision.RetryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Set("Retry-After", strconv.Itoa(seconds))
			return apperrors.NewRateLimited(decision.RetryAfter)
		}
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}
