package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jarrod-lowe/lambda-echo/internal/echo"
	"github.com/jarrod-lowe/lambda-echo/internal/jsonvalue"
	"github.com/jarrod-lowe/lambda-echo/internal/logging"
	"github.com/jarrod-lowe/lambda-echo/internal/tracing"
)

var logger = logging.New()

const (
	defaultAddr            = ":9000"
	defaultTimeout         = 3 * time.Second
	defaultRegion          = "us-east-1"
	localAccountID         = "000000000000"
	shutdownTimeout        = 5 * time.Second
	invocationsPathPattern = "/2015-03-31/functions/:name/invocations"
)

// Config holds application configuration
type Config struct {
	Addr    string
	Timeout time.Duration
	Region  string
}

// Handler is the function served for every invocation
type Handler func(ctx context.Context, payload jsonvalue.Value) (jsonvalue.Value, error)

type errorResponse struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// loadConfig reads ECHO_LOCAL_ADDR, ECHO_LOCAL_TIMEOUT and AWS_REGION
func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:    defaultAddr,
		Timeout: defaultTimeout,
		Region:  defaultRegion,
	}

	if addr := getenv("ECHO_LOCAL_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if region := getenv("AWS_REGION"); region != "" {
		cfg.Region = region
	}
	if raw := getenv("ECHO_LOCAL_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ECHO_LOCAL_TIMEOUT %q: %w", raw, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("ECHO_LOCAL_TIMEOUT must be positive, got %s", timeout)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

// newRouter builds the gin engine mirroring the Lambda Invoke API
func newRouter(cfg Config, handler Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST(invocationsPathPattern, invokeHandler(cfg, handler))

	return r
}

func invokeHandler(cfg Config, handler Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		functionName := c.Param("name")
		requestID := uuid.NewString()
		c.Header("X-Amzn-RequestId", requestID)

		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{
				ErrorType:    "InvalidRequestContentException",
				ErrorMessage: fmt.Sprintf("could not read request body: %v", err),
			})
			return
		}

		payload, err := jsonvalue.Parse(body)
		if err != nil {
			logger.Warn("Rejected invocation with invalid JSON",
				slog.String("request_id", requestID),
				slog.String("function", functionName),
				slog.Int("payload_bytes", len(body)),
			)
			c.JSON(http.StatusBadRequest, errorResponse{
				ErrorType:    "InvalidRequestContentException",
				ErrorMessage: "Could not parse request body into json",
			})
			return
		}

		lc := &lambdacontext.LambdaContext{
			AwsRequestID:       requestID,
			InvokedFunctionArn: fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", cfg.Region, localAccountID, functionName),
		}
		ctx := lambdacontext.NewContext(c.Request.Context(), lc)
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		ctx, span := tracing.StartHandlerSpan(ctx, "LocalInvoke",
			tracing.Function(functionName),
			tracing.RequestID(requestID),
			tracing.PayloadBytes(len(body)),
		)
		defer span.End()

		result, err := handler(ctx, payload)
		if err != nil {
			tracing.RecordError(span, err)
			c.Header("X-Amz-Function-Error", "Unhandled")
			c.JSON(http.StatusOK, errorResponse{
				ErrorType:    fmt.Sprintf("%T", err),
				ErrorMessage: err.Error(),
			})
			return
		}

		out, err := result.MarshalJSON()
		if err != nil {
			tracing.RecordError(span, err)
			logger.ErrorContext(ctx, "Failed to marshal response",
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, errorResponse{
				ErrorType:    "ServiceException",
				ErrorMessage: "Internal server error",
			})
			return
		}

		logger.InfoContext(ctx, "Invocation completed",
			slog.String("function", functionName),
			slog.Int("payload_bytes", len(body)),
		)

		c.Header("X-Amz-Executed-Version", "$LATEST")
		c.Data(http.StatusOK, "application/json", out)
	}
}

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		logger.Error("FATAL: Invalid configuration",
			slog.String("error", err.Error()),
		)
		panic(err)
	}

	gin.SetMode(gin.ReleaseMode)
	tracing.InitPropagator()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(cfg, echo.Handler),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Local echo server listening",
			slog.String("addr", cfg.Addr),
			slog.Duration("timeout", cfg.Timeout),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed",
				slog.String("error", err.Error()),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed",
			slog.String("error", err.Error()),
		)
	}
}
