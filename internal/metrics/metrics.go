// Package metrics publishes custom CloudWatch metrics.
package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Publisher publishes a single metric datum
type Publisher interface {
	PublishMetric(ctx context.Context, name string, value float64, unit types.StandardUnit) error
}

// CloudWatchClient defines the interface for CloudWatch operations
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher implements Publisher using CloudWatch.
// Every datum carries a FunctionName dimension.
type CloudWatchPublisher struct {
	client       CloudWatchClient
	namespace    string
	functionName string
}

// NewCloudWatchPublisher creates a new CloudWatchPublisher
func NewCloudWatchPublisher(client CloudWatchClient, namespace, functionName string) *CloudWatchPublisher {
	return &CloudWatchPublisher{
		client:       client,
		namespace:    namespace,
		functionName: functionName,
	}
}

// PublishMetric publishes a metric to CloudWatch
func (p *CloudWatchPublisher) PublishMetric(ctx context.Context, name string, value float64, unit types.StandardUnit) error {
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: []types.Dimension{
					{
						Name:  aws.String("FunctionName"),
						Value: aws.String(p.functionName),
					},
				},
			},
		},
	})
	return err
}
