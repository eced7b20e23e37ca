// Package logger builds the service's slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/abgdnv/inventory/internal/platform/contextkeys"
)

// New creates a JSON slog.Logger writing to w at the given level.
// Records logged with a request context carry its request_id and, on item routes, item_id.
func New(w io.Writer, level string) *slog.Logger {
	logLevel := ToLevel(level)
	return slog.New(requestScoped{next: slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	})})
}

func ToLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var scopedAttrs = []struct {
	name string
	get  func(context.Context) (string, bool)
}{
	{name: "request_id", get: contextkeys.GetRequestID},
	{name: "item_id", get: contextkeys.GetItemID},
}

// requestScoped copies the values in scopedAttrs from the record's context into the record.
type requestScoped struct {
	next slog.Handler
}

func (h requestScoped) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h requestScoped) Handle(ctx context.Context, r slog.Record) error {
	for _, a := range scopedAttrs {
		if v, ok := a.get(ctx); ok {
			r.AddAttrs(slog.String(a.name, v))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h requestScoped) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestScoped{next: h.next.WithAttrs(attrs)}
}

func (h requestScoped) WithGroup(name string) slog.Handler {
	return requestScoped{next: h.next.WithGroup(name)}
}
