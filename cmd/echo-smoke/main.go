package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"
	"github.com/jarrod-lowe/lambda-echo/internal/awsinit"
	"github.com/jarrod-lowe/lambda-echo/internal/invoker"
	"github.com/jarrod-lowe/lambda-echo/internal/jsonvalue"
	"github.com/jarrod-lowe/lambda-echo/internal/logging"
	"github.com/jarrod-lowe/lambda-echo/internal/metrics"
	"github.com/jarrod-lowe/lambda-echo/internal/tracing"
)

var logger = logging.New()

const (
	metricIdentityOK = "EchoIdentityOK"
	metricLatency    = "EchoLatencyMs"
)

// ErrIdentityMismatch is returned when the echo reply differs from the probe
var ErrIdentityMismatch = errors.New("echo reply does not match probe")

// FunctionInvoker invokes the function under test
type FunctionInvoker interface {
	Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error)
}

// SSMReader reads parameters from SSM Parameter Store
type SSMReader interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Config holds application configuration
type Config struct {
	FunctionName    string
	MetricNamespace string
}

// Dependencies for handler (injectable for testing)
type Dependencies struct {
	Invoker    FunctionInvoker
	Metrics    metrics.Publisher
	Config     Config
	NewProbeID func() string
	Now        func() time.Time
}

var deps *Dependencies

// buildProbe returns a payload covering every JSON kind, including a float
// literal that would be rewritten if the function round-tripped through float64
func buildProbe(id string, sentAt time.Time) jsonvalue.Value {
	return jsonvalue.ObjectValue(
		jsonvalue.Member{Key: "probe", Value: jsonvalue.ObjectValue(
			jsonvalue.Member{Key: "id", Value: jsonvalue.StringValue(id)},
			jsonvalue.Member{Key: "sentAt", Value: jsonvalue.StringValue(sentAt.UTC().Format(time.RFC3339Nano))},
		)},
		jsonvalue.Member{Key: "float", Value: jsonvalue.NumberValue("3.0")},
		jsonvalue.Member{Key: "integer", Value: jsonvalue.NumberValue("3")},
		jsonvalue.Member{Key: "exponent", Value: jsonvalue.NumberValue("1.5e-7")},
		jsonvalue.Member{Key: "nested", Value: jsonvalue.ObjectValue(
			jsonvalue.Member{Key: "list", Value: jsonvalue.ArrayValue(
				jsonvalue.NumberValue("1"),
				jsonvalue.StringValue("two"),
				jsonvalue.ObjectValue(jsonvalue.Member{Key: "three", Value: jsonvalue.NumberValue("3.0")}),
			)},
			jsonvalue.Member{Key: "empty", Value: jsonvalue.ObjectValue()},
			jsonvalue.Member{Key: "none", Value: jsonvalue.NullValue()},
			jsonvalue.Member{Key: "flags", Value: jsonvalue.ArrayValue(jsonvalue.BoolValue(true), jsonvalue.BoolValue(false))},
		)},
		jsonvalue.Member{Key: "text", Value: jsonvalue.StringValue("kia ora ✓ \"quoted\"")},
	)
}

// checkEcho invokes the target with a fresh probe and verifies the reply
// is identical
func checkEcho(ctx context.Context) error {
	probeID := deps.NewProbeID()
	functionName := deps.Config.FunctionName

	ctx, span := tracing.StartHandlerSpan(ctx, "EchoSmokeHandler",
		tracing.Function("echo-smoke"),
		tracing.FunctionName(functionName),
		tracing.ProbeID(probeID),
	)
	defer span.End()

	probe := buildProbe(probeID, deps.Now())
	payload, err := json.Marshal(probe)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to marshal probe: %w", err)
	}
	span.SetAttributes(tracing.PayloadBytes(len(payload)))

	start := deps.Now()
	reply, err := deps.Invoker.Invoke(ctx, functionName, payload)
	latency := deps.Now().Sub(start)
	if err != nil {
		tracing.RecordError(span, err)
		logger.ErrorContext(ctx, "Echo invocation failed",
			slog.String("function_name", functionName),
			slog.String("probe_id", probeID),
			slog.String("error", err.Error()),
		)
		return errors.Join(fmt.Errorf("failed to invoke %s: %w", functionName, err), publishOutcome(ctx, false, 0))
	}

	if err := verifyReply(probe, probeID, reply); err != nil {
		tracing.RecordError(span, err)
		logger.ErrorContext(ctx, "Echo reply mismatch",
			slog.String("function_name", functionName),
			slog.String("probe_id", probeID),
			slog.String("reply", string(reply)),
		)
		return errors.Join(err, publishOutcome(ctx, false, latency))
	}

	if err := publishOutcome(ctx, true, latency); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	logger.InfoContext(ctx, "Echo identity check passed",
		slog.String("function_name", functionName),
		slog.String("probe_id", probeID),
		slog.Int64("latency_ms", latency.Milliseconds()),
	)

	return nil
}

func verifyReply(probe jsonvalue.Value, probeID string, reply []byte) error {
	got, err := jsonvalue.Parse(reply)
	if err != nil {
		return fmt.Errorf("%w: reply is not JSON: %w", ErrIdentityMismatch, err)
	}

	echoedID, err := got.Pointer("/probe/id")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIdentityMismatch, err)
	}
	if echoedID.Kind != jsonvalue.String || echoedID.Str != probeID {
		return fmt.Errorf("%w: probe id %s, sent %q", ErrIdentityMismatch, echoedID, probeID)
	}

	if !jsonvalue.Equal(probe, got) {
		return fmt.Errorf("%w: sent %s, received %s", ErrIdentityMismatch, probe, got)
	}

	return nil
}

// publishOutcome records pass/fail and, when an invocation completed, its latency
func publishOutcome(ctx context.Context, ok bool, latency time.Duration) error {
	value := 0.0
	if ok {
		value = 1
	}
	if err := deps.Metrics.PublishMetric(ctx, metricIdentityOK, value, types.StandardUnitCount); err != nil {
		return fmt.Errorf("failed to publish metric: %w", err)
	}

	if latency > 0 {
		ms := float64(latency) / float64(time.Millisecond)
		if err := deps.Metrics.PublishMetric(ctx, metricLatency, ms, types.StandardUnitMilliseconds); err != nil {
			return fmt.Errorf("failed to publish metric: %w", err)
		}
	}

	return nil
}

// handler is the Lambda entry point
func handler(ctx context.Context) error {
	return checkEcho(ctx)
}

// resolveFunctionName prefers an explicit name and falls back to an SSM parameter
func resolveFunctionName(ctx context.Context, reader SSMReader, name, parameter string) (string, error) {
	if name != "" {
		return name, nil
	}
	if parameter == "" {
		return "", errors.New("ECHO_FUNCTION_NAME or ECHO_FUNCTION_PARAMETER environment variable is required")
	}
	if reader == nil {
		return "", errors.New("no SSM reader configured")
	}

	value, err := reader.GetParameter(ctx, parameter)
	if err != nil {
		return "", fmt.Errorf("failed to read SSM parameter: %w", err)
	}
	return value, nil
}

// =============================================================================
// Real implementations
// =============================================================================

// SSMParameterReader implements SSMReader using AWS SSM
type SSMParameterReader struct {
	client *ssm.Client
}

// NewSSMParameterReader creates a new SSMParameterReader
func NewSSMParameterReader(client *ssm.Client) *SSMParameterReader {
	return &SSMParameterReader{client: client}
}

// GetParameter retrieves a parameter from SSM
func (r *SSMParameterReader) GetParameter(ctx context.Context, name string) (string, error) {
	result, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return "", err
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("parameter value is empty")
	}

	return *result.Parameter.Value, nil
}

func main() {
	ctx := context.Background()

	result, err := awsinit.Init(ctx, awsinit.WithFunctionName("echo-smoke"))
	if err != nil {
		logger.Error("FATAL: Failed to initialize AWS",
			slog.String("error", err.Error()),
		)
		panic(err)
	}
	defer result.Cleanup()

	metricNamespace := os.Getenv("METRIC_NAMESPACE")
	if metricNamespace == "" {
		logger.Error("FATAL: METRIC_NAMESPACE environment variable is required")
		panic("METRIC_NAMESPACE environment variable is required")
	}

	var reader SSMReader
	if parameter := os.Getenv("ECHO_FUNCTION_PARAMETER"); parameter != "" {
		reader = NewSSMParameterReader(ssm.NewFromConfig(result.Config))
	}

	functionName, err := resolveFunctionName(ctx, reader, os.Getenv("ECHO_FUNCTION_NAME"), os.Getenv("ECHO_FUNCTION_PARAMETER"))
	if err != nil {
		logger.Error("FATAL: Failed to resolve target function",
			slog.String("error", err.Error()),
		)
		panic(err)
	}

	lambdaClient := lambda.NewFromConfig(result.Config)
	cwClient := cloudwatch.NewFromConfig(result.Config)

	deps = &Dependencies{
		Invoker: invoker.NewLambdaInvoker(lambdaClient),
		Metrics: metrics.NewCloudWatchPublisher(cwClient, metricNamespace, functionName),
		Config: Config{
			FunctionName:    functionName,
			MetricNamespace: metricNamespace,
		},
		NewProbeID: uuid.NewString,
		Now:        time.Now,
	}

	result.Start(handler)
}
