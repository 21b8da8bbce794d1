package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDKey = "request_id"
	OperatorKey  = "operator"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func WithOperator(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, OperatorKey, username)
}

// GetOperator returns the username of the authenticated operator, or "" on
// unauthenticated routes.
func GetOperator(ctx context.Context) string {
	name, _ := ctx.Value(OperatorKey).(string)
	return name
}

// FromFiberCtx detaches a request-scoped context from fasthttp, carrying the
// request id and operator over from the fiber locals.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := context.Background()

	requestID, ok := c.Locals("X-Request-ID").(string)
	if !ok || requestID == "" {
		requestID = c.Get("X-Request-ID")
		if requestID == "" {
			requestID = "unknown"
		}
	}
	ctx = WithRequestID(ctx, requestID)

	if name, ok := c.Locals(OperatorKey).(string); ok && name != "" {
		ctx = WithOperator(ctx, name)
	}
	return ctx
}
