package hashing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/hasbyte1/go-argon2/hashing"

// Metric names recorded through [Options.MeterProvider].
const (
	MetricOperations = "argon2.operations"
	MetricDuration   = "argon2.duration"
)

// Operation outcomes recorded in the "outcome" attribute.
const (
	outcomeOK       = "ok"
	outcomeMismatch = "mismatch"
)

type instruments struct {
	ops      metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	ops, err := meter.Int64Counter(MetricOperations,
		metric.WithDescription("Argon2 hash and verify operations by variant and outcome."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s counter: %w", MetricOperations, err)
	}
	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Wall time of Argon2 hash and verify operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s histogram: %w", MetricDuration, err)
	}
	return &instruments{ops: ops, duration: duration}, nil
}

// record counts one operation and its duration, labelled by operation,
// variant and outcome.
func (m *instruments) record(op string, v Variant, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("variant", v.String()),
		attribute.String("outcome", outcomeOf(err)),
	)
	ctx := context.Background()
	m.ops.Add(ctx, 1, attrs)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrMismatch):
		return outcomeMismatch
	case errors.Is(err, ErrValidation):
		return "invalid_params"
	case errors.Is(err, ErrDecoding):
		return "invalid_hash"
	case errors.Is(err, ErrResource):
		return "resource"
	default:
		return "internal"
	}
}
