// collector.go: OpenTelemetry implementation of memline.MetricsCollector.
//
// Grounded on agilira/balios/otel's collector.go: the same instrument
// shapes (one Int64Histogram per latency-bearing operation, Int64Counter
// for outcome tallies), the same functional-options Option/Options
// pattern, and the same nil-provider error. Metric names and the set of
// counters are generalized from balios's Get/Set/Delete/Eviction vocabulary
// to memline.MetricsCollector's Get/Set/Delete/CasMismatch/Expire one.
package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"

	"github.com/agilira/memline"
)

// OTelMetricsCollector implements memline.MetricsCollector using
// OpenTelemetry. Safe for concurrent use; the underlying OTEL instruments
// are lock-free.
type OTelMetricsCollector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram

	getHits     metric.Int64Counter
	getMisses   metric.Int64Counter
	setStored   metric.Int64Counter
	setRejected metric.Int64Counter
	delHits     metric.Int64Counter
	delMisses   metric.Int64Counter
	casMismatch metric.Int64Counter
	expirations metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName is the OpenTelemetry meter name. Default:
	// "github.com/agilira/memline".
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful when a process runs more
// than one Store.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a metrics collector backed by provider.
// provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/memline"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	if c.getLatency, err = meter.Int64Histogram("memline_get_latency_ns",
		metric.WithDescription("Latency of get/gets/gat/gats lookups in nanoseconds"),
		metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.setLatency, err = meter.Int64Histogram("memline_set_latency_ns",
		metric.WithDescription("Latency of storage-command operations in nanoseconds"),
		metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.deleteLatency, err = meter.Int64Histogram("memline_delete_latency_ns",
		metric.WithDescription("Latency of delete operations in nanoseconds"),
		metric.WithUnit("ns")); err != nil {
		return nil, err
	}
	if c.getHits, err = meter.Int64Counter("memline_get_hits_total",
		metric.WithDescription("Total number of lookup hits")); err != nil {
		return nil, err
	}
	if c.getMisses, err = meter.Int64Counter("memline_get_misses_total",
		metric.WithDescription("Total number of lookup misses")); err != nil {
		return nil, err
	}
	if c.setStored, err = meter.Int64Counter("memline_set_stored_total",
		metric.WithDescription("Total number of storage commands that stored a value")); err != nil {
		return nil, err
	}
	if c.setRejected, err = meter.Int64Counter("memline_set_rejected_total",
		metric.WithDescription("Total number of storage commands rejected by a precondition")); err != nil {
		return nil, err
	}
	if c.delHits, err = meter.Int64Counter("memline_delete_hits_total",
		metric.WithDescription("Total number of delete commands that removed a key")); err != nil {
		return nil, err
	}
	if c.delMisses, err = meter.Int64Counter("memline_delete_misses_total",
		metric.WithDescription("Total number of delete commands against an absent key")); err != nil {
		return nil, err
	}
	if c.casMismatch, err = meter.Int64Counter("memline_cas_mismatches_total",
		metric.WithDescription("Total number of cas commands rejected on a version mismatch")); err != nil {
		return nil, err
	}
	if c.expirations, err = meter.Int64Counter("memline_expirations_total",
		metric.WithDescription("Total number of expired entries removed by an expiry sweep")); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.getHits.Add(ctx, 1)
	} else {
		c.getMisses.Add(ctx, 1)
	}
}

func (c *OTelMetricsCollector) RecordSet(latencyNs int64, stored bool) {
	ctx := context.Background()
	c.setLatency.Record(ctx, latencyNs)
	if stored {
		c.setStored.Add(ctx, 1)
	} else {
		c.setRejected.Add(ctx, 1)
	}
}

func (c *OTelMetricsCollector) RecordDelete(latencyNs int64, deleted bool) {
	ctx := context.Background()
	c.deleteLatency.Record(ctx, latencyNs)
	if deleted {
		c.delHits.Add(ctx, 1)
	} else {
		c.delMisses.Add(ctx, 1)
	}
}

func (c *OTelMetricsCollector) RecordCasMismatch() {
	c.casMismatch.Add(context.Background(), 1)
}

func (c *OTelMetricsCollector) RecordExpire() {
	c.expirations.Add(context.Background(), 1)
}

var _ memline.MetricsCollector = (*OTelMetricsCollector)(nil)
