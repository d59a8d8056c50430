// Package requestctx carries request-scoped identifiers across package
// boundaries, including into background jobs started by a request.
package requestctx

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// Carry copies the request id of from onto to. Jobs use it so work that
// outlives the request still logs the id that started it.
func Carry(from, to context.Context) context.Context {
	return WithRequestID(to, GetRequestID(from))
}
