package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Info("Echo server listening", slog.String("addr", ":9000"))

	entry := decodeLine(t, &buf)
	if entry["msg"] != "Echo server listening" {
		t.Errorf("expected msg 'Echo server listening', got %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected level INFO, got %v", entry["level"])
	}
	if entry["addr"] != ":9000" {
		t.Errorf("expected addr ':9000', got %v", entry["addr"])
	}
}

func TestLogger_AddsLambdaContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo).With(slog.String("service", "echo"))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{
		AwsRequestID:       "req-123",
		InvokedFunctionArn: "arn:aws:lambda:ap-southeast-2:123456789012:function:echo",
	})
	logger.InfoContext(ctx, "Probe completed")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id 'req-123', got %v", entry["request_id"])
	}
	if entry["function_arn"] != "arn:aws:lambda:ap-southeast-2:123456789012:function:echo" {
		t.Errorf("unexpected function_arn %v", entry["function_arn"])
	}
	if entry["service"] != "echo" {
		t.Errorf("expected service attribute to survive With, got %v", entry["service"])
	}
}

func TestLogger_NoLambdaContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.InfoContext(context.Background(), "plain")

	entry := decodeLine(t, &buf)
	if _, ok := entry["request_id"]; ok {
		t.Error("expected no request_id without a Lambda context")
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
