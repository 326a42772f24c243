package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Chordsmith/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
	}, nil
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := m.dimensions("Endpoint", endpoint)

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "APILatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	}()
}

// RecordPlayback records playback count, note count and wall time
func (m *Client) RecordPlayback(_ context.Context, kind, device string, notes int, duration time.Duration, err error) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := append(m.dimensions("Kind", kind), types.Dimension{
			Name:  aws.String("Device"),
			Value: aws.String(device),
		})

		metricName := "Playbacks"
		if err != nil {
			metricName = "PlaybackErrors"
		}
		if putErr := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); putErr != nil {
			log.Printf("Failed to record %s metric: %v", metricName, putErr)
		}
		if putErr := m.putMetric(ctx, "PlaybackNotes", float64(notes), types.StandardUnitCount, dimensions); putErr != nil {
			log.Printf("Failed to record PlaybackNotes metric: %v", putErr)
		}
		if putErr := m.putMetric(ctx, "PlaybackDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); putErr != nil {
			log.Printf("Failed to record PlaybackDuration metric: %v", putErr)
		}
	}()
}

// RecordAdvisorCall records advisor latency and fallback rate
func (m *Client) RecordAdvisorCall(_ context.Context, provider, operation, source string, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := append(m.dimensions("Provider", provider),
			types.Dimension{Name: aws.String("Operation"), Value: aws.String(operation)},
			types.Dimension{Name: aws.String("Source"), Value: aws.String(source)},
		)

		if err := m.putMetric(ctx, "AdvisorCalls", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record AdvisorCalls metric: %v", err)
		}
		if err := m.putMetric(ctx, "AdvisorLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record AdvisorLatency metric: %v", err)
		}
	}()
}

// RecordTokenUsage records LLM token usage
func (m *Client) RecordTokenUsage(_ context.Context, model string, totalTokens, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := m.dimensions("Model", model)

		if err := m.putMetric(ctx, "LLMTokens/Total", float64(totalTokens), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record LLMTokens/Total metric: %v", err)
		}
		if err := m.putMetric(ctx, "LLMTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record LLMTokens/Input metric: %v", err)
		}
		if err := m.putMetric(ctx, "LLMTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record LLMTokens/Output metric: %v", err)
		}
	}()
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}
