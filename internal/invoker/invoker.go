// Package invoker calls deployed Lambda functions synchronously.
package invoker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaClient defines the interface for Lambda operations
type LambdaClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// FunctionError is returned when the function itself failed.
// Payload carries the error document produced by the runtime.
type FunctionError struct {
	FunctionName string
	Type         string
	Payload      []byte
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s returned %s error: %s", e.FunctionName, e.Type, e.Payload)
}

// LambdaInvoker invokes functions via the Lambda API
type LambdaInvoker struct {
	client LambdaClient
}

// NewLambdaInvoker creates a new Lambda invoker
func NewLambdaInvoker(client LambdaClient) *LambdaInvoker {
	return &LambdaInvoker{client: client}
}

// Invoke sends payload to functionName with RequestResponse semantics and
// returns the response payload
func (i *LambdaInvoker) Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	output, err := i.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("lambda invocation failed: %w", err)
	}

	if output.FunctionError != nil && *output.FunctionError != "" {
		return nil, &FunctionError{
			FunctionName: functionName,
			Type:         *output.FunctionError,
			Payload:      output.Payload,
		}
	}

	if output.StatusCode != 0 && output.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status code %d from %s", output.StatusCode, functionName)
	}

	return output.Payload, nil
}
