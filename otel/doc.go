// Package otel provides an OpenTelemetry-backed memline.MetricsCollector.
//
// This is a separate module, mirroring the teacher's own otel/ submodule
// layout, so a memline server that doesn't want metrics doesn't pay for
// the OpenTelemetry SDK dependency.
//
// # Quick Start
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := memlineotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := memline.NewStore(memline.NewSystemClock())
//	store.SetMetricsCollector(collector)
//
// # Metrics Exposed
//
// Histograms:
//   - memline_get_latency_ns
//   - memline_set_latency_ns
//   - memline_delete_latency_ns
//
// Counters:
//   - memline_get_hits_total
//   - memline_get_misses_total
//   - memline_set_stored_total
//   - memline_set_rejected_total
//   - memline_delete_hits_total
//   - memline_delete_misses_total
//   - memline_cas_mismatches_total
//   - memline_expirations_total
package otel
