// Package logging builds the structured JSON logger shared by all binaries.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// New returns a JSON logger writing to stdout at the level named by LOG_LEVEL
func New() *slog.Logger {
	return NewWithWriter(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewWithWriter returns a JSON logger writing to w
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&lambdaHandler{
		Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	})
}

// ParseLevel maps debug/info/warn/error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// lambdaHandler adds the invocation identifiers to records logged with a
// Lambda context
type lambdaHandler struct {
	slog.Handler
}

func (h *lambdaHandler) Handle(ctx context.Context, r slog.Record) error {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc != nil {
		if lc.AwsRequestID != "" {
			r.AddAttrs(slog.String("request_id", lc.AwsRequestID))
		}
		if lc.InvokedFunctionArn != "" {
			r.AddAttrs(slog.String("function_arn", lc.InvokedFunctionArn))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *lambdaHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &lambdaHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *lambdaHandler) WithGroup(name string) slog.Handler {
	return &lambdaHandler{Handler: h.Handler.WithGroup(name)}
}
