package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "repflow"

// Metrics are the guided workout instruments.
type Metrics struct {
	SetsCompleted    metric.Int64Counter
	SetsBlocked      metric.Int64Counter
	SessionsStarted  metric.Int64Counter
	SessionsFinished metric.Int64Counter
	ActiveSessions   metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on provider, or on the global provider
// when provider is nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	var (
		m   Metrics
		err error
	)
	if m.SetsCompleted, err = meter.Int64Counter("workout.sets.completed",
		metric.WithDescription("Sets marked complete by passing validation")); err != nil {
		return nil, fmt.Errorf("sets completed counter: %w", err)
	}
	if m.SetsBlocked, err = meter.Int64Counter("workout.sets.blocked",
		metric.WithDescription("Forward moves refused by set validation")); err != nil {
		return nil, fmt.Errorf("sets blocked counter: %w", err)
	}
	if m.SessionsStarted, err = meter.Int64Counter("workout.sessions.started"); err != nil {
		return nil, fmt.Errorf("sessions started counter: %w", err)
	}
	if m.SessionsFinished, err = meter.Int64Counter("workout.sessions.finished"); err != nil {
		return nil, fmt.Errorf("sessions finished counter: %w", err)
	}
	if m.ActiveSessions, err = meter.Int64UpDownCounter("workout.sessions.active",
		metric.WithDescription("Guided sessions held in memory")); err != nil {
		return nil, fmt.Errorf("active sessions counter: %w", err)
	}
	return &m, nil
}
