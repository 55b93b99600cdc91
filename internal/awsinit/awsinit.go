// Package awsinit performs the cold start work shared by every function:
// tracing, the cold start span, and the AWS SDK configuration.
package awsinit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/jarrod-lowe/lambda-echo/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda/xrayconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = 2 * time.Second

// Overridden in tests
var (
	initTracing   = tracing.Init
	loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	}
	startLambda = func(handler lambda.Handler) {
		lambda.Start(handler)
	}
)

type options struct {
	functionName string
	skipConfig   bool
}

// Option configures Init
type Option func(*options)

// WithFunctionName names the cold start span. Defaults to the Lambda
// function name from the environment.
func WithFunctionName(name string) Option {
	return func(o *options) {
		o.functionName = name
	}
}

// WithoutAWSConfig skips loading the SDK configuration, for functions that
// make no AWS calls
func WithoutAWSConfig() Option {
	return func(o *options) {
		o.skipConfig = true
	}
}

// Result holds what Init produced
type Result struct {
	// Config is the zero value when WithoutAWSConfig was given
	Config         aws.Config
	TracerProvider *sdktrace.TracerProvider

	coldStart    trace.Span
	endColdStart sync.Once
}

// Init sets up tracing and, unless disabled, loads the AWS configuration
// with OTel middleware attached. The cold start span stays open until
// Start or Cleanup.
func Init(ctx context.Context, opts ...Option) (*Result, error) {
	o := options{functionName: lambdacontext.FunctionName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.functionName == "" {
		o.functionName = "unknown"
	}

	tp, err := initTracing(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartColdStartSpan(ctx, o.functionName)
	result := &Result{
		TracerProvider: tp,
		coldStart:      span,
	}

	if o.skipConfig {
		return result, nil
	}

	cfg, err := loadAWSConfig(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		result.finishColdStart()
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	result.Config = cfg

	return result, nil
}

// Handler builds the runtime handler for handler, which may be any function
// signature lambda.NewHandler accepts. Instrumentation wraps the raw payload
// bytes and leaves decoding to handler.
func (r *Result) Handler(handler any) lambda.Handler {
	return otellambda.WrapHandler(lambda.NewHandler(handler), xrayconfig.WithRecommendedOptions(r.TracerProvider)...)
}

// Start ends the cold start span and hands the instrumented handler to the
// Lambda runtime. It does not return.
func (r *Result) Start(handler any) {
	r.finishColdStart()
	startLambda(r.Handler(handler))
}

// Cleanup flushes and shuts down the tracer provider
func (r *Result) Cleanup() {
	r.finishColdStart()
	if r.TracerProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = r.TracerProvider.Shutdown(ctx)
}

func (r *Result) finishColdStart() {
	r.endColdStart.Do(func() {
		if r.coldStart != nil {
			r.coldStart.End()
		}
	})
}
