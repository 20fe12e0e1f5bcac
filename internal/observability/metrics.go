package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricAnalysesTotal    = "bundle_analyzer.analyses.total"
	metricAnalysisDuration = "bundle_analyzer.analysis.duration.seconds"
	metricErrorsTotal      = "bundle_analyzer.errors.total"
	metricSubscribers      = "bundle_analyzer.subscribers"

	attrOp     = "op"
	attrStatus = "status"

	statusError = "error"
)

// durationBucketBoundaries covers 10ms to 60s; stats-only runs finish in
// milliseconds while bundle parsing of large outputs can take tens of seconds.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds the OTel instruments for analysis runs and the live
// subscriber gauge.
type PipelineMetrics struct {
	analysesTotal    metric.Int64Counter
	analysisDuration metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	subscribers      metric.Int64UpDownCounter
}

// NewPipelineMetrics creates the pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	analyses, err := mt.Int64Counter(metricAnalysesTotal,
		metric.WithDescription("Total number of analysis runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnalysesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricAnalysisDuration,
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnalysisDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	subscribers, err := mt.Int64UpDownCounter(metricSubscribers,
		metric.WithDescription("Connected live-report subscribers"),
		metric.WithUnit("{subscriber}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSubscribers, err)
	}

	return &PipelineMetrics{
		analysesTotal:    analyses,
		analysisDuration: duration,
		errorsTotal:      errTotal,
		subscribers:      subscribers,
	}, nil
}

// RecordAnalysis records a completed analysis run with its operation,
// status, and duration.
func (pm *PipelineMetrics) RecordAnalysis(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	pm.analysesTotal.Add(ctx, 1, attrs)
	pm.analysisDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		pm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackSubscriber increments the subscriber gauge and returns a function to
// decrement it on disconnect.
func (pm *PipelineMetrics) TrackSubscriber(ctx context.Context) func() {
	pm.subscribers.Add(ctx, 1)

	return func() {
		pm.subscribers.Add(ctx, -1)
	}
}
