// Package telemetry records extension loading metrics with OpenTelemetry.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the instruments used by the extension manager. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	extensionsLoaded        metric.Int64Counter
	extensionsFailed        metric.Int64Counter
	contributionsRegistered metric.Int64Counter
	validationFailures      metric.Int64Counter
	loadDuration            metric.Float64Histogram
}

// NewMetrics creates the instruments on meter. A nil meter uses a no-op
// meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("exthost")
	}

	loaded, err := meter.Int64Counter("exthost.extensions.loaded",
		metric.WithDescription("Number of extensions loaded and registered"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter("exthost.extensions.failed",
		metric.WithDescription("Number of extensions that failed to load"),
	)
	if err != nil {
		return nil, err
	}

	registered, err := meter.Int64Counter("exthost.contributions.registered",
		metric.WithDescription("Number of contributions registered"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("exthost.contributions.rejected",
		metric.WithDescription("Number of contributions rejected by manifest validation"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("exthost.extension.load.duration",
		metric.WithDescription("Duration of a single extension load in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		extensionsLoaded:        loaded,
		extensionsFailed:        failed,
		contributionsRegistered: registered,
		validationFailures:      rejected,
		loadDuration:            duration,
	}, nil
}

// ExtensionLoaded records a successful load.
func (m *Metrics) ExtensionLoaded(ctx context.Context, extensionID string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("extension", extensionID))
	m.extensionsLoaded.Add(ctx, 1, attrs)
	m.loadDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// ExtensionFailed records a failed load. stage is where it failed, e.g.
// "import" or "validate".
func (m *Metrics) ExtensionFailed(ctx context.Context, extensionID, stage string) {
	if m == nil {
		return
	}
	m.extensionsFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extension", extensionID),
		attribute.String("stage", stage),
	))
}

// ContributionRegistered records one registered contribution.
func (m *Metrics) ContributionRegistered(ctx context.Context, extensionID, kind string) {
	if m == nil {
		return
	}
	m.contributionsRegistered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extension", extensionID),
		attribute.String("kind", kind),
	))
}

// ValidationFailed records a contribution missing from its manifest.
func (m *Metrics) ValidationFailed(ctx context.Context, extensionID, kind string) {
	if m == nil {
		return
	}
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("extension", extensionID),
		attribute.String("kind", kind),
	))
}
