package main

import (
	"context"
	"log/slog"

	"github.com/jarrod-lowe/lambda-echo/internal/awsinit"
	"github.com/jarrod-lowe/lambda-echo/internal/echo"
	"github.com/jarrod-lowe/lambda-echo/internal/logging"
)

var logger = logging.New()

func main() {
	ctx := context.Background()

	result, err := awsinit.Init(ctx, awsinit.WithoutAWSConfig())
	if err != nil {
		logger.Error("FATAL: Failed to initialize tracer provider",
			slog.String("error", err.Error()),
		)
		panic(err)
	}
	defer result.Cleanup()

	result.Start(echo.Handler)
}
