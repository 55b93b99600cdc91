// Package echo implements the echo function: the invocation payload is
// returned as the result, unchanged.
package echo

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/jarrod-lowe/lambda-echo/internal/jsonvalue"
)

// Event is a single invocation: the payload plus the runtime metadata that
// accompanied it. Context is nil when the handler runs outside Lambda.
type Event struct {
	Payload jsonvalue.Value
	Context *lambdacontext.LambdaContext
}

// NewEvent pairs a payload with the Lambda context carried by ctx
func NewEvent(ctx context.Context, payload jsonvalue.Value) Event {
	lc, _ := lambdacontext.FromContext(ctx)
	return Event{Payload: payload, Context: lc}
}

// IntoParts splits the event into payload and metadata
func (e Event) IntoParts() (jsonvalue.Value, *lambdacontext.LambdaContext) {
	return e.Payload, e.Context
}

// Echo returns the payload of event. The metadata is dropped.
func Echo(event Event) jsonvalue.Value {
	payload, _ := event.IntoParts()
	return payload
}

// Handler is the Lambda handler for the echo function.
// It never fails; malformed input is rejected by the runtime before it gets here.
func Handler(ctx context.Context, payload jsonvalue.Value) (jsonvalue.Value, error) {
	return Echo(NewEvent(ctx, payload)), nil
}
