// Package contextkeys holds the request-scoped values the HTTP layer stores for logging.
package contextkeys

import "context"

type key int

const (
	requestIDKey key = iota
	itemIDKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	return lookup(ctx, requestIDKey)
}

// WithItemID records the raw {id} path segment of an /inventory/{id} request.
func WithItemID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

func GetItemID(ctx context.Context) (string, bool) {
	return lookup(ctx, itemIDKey)
}

func lookup(ctx context.Context, k key) (string, bool) {
	v, ok := ctx.Value(k).(string)
	return v, ok && v != ""
}
