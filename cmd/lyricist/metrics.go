package main

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// telemetry is the process meter provider. A CLI run is too short for a
// scrape or push exporter, so instruments are read back with a ManualReader
// and their totals logged when the command finishes.
type telemetry struct {
	reader *sdkmetric.ManualReader
	mp     *sdkmetric.MeterProvider
}

// newTelemetry installs a meter provider as the global one.
func newTelemetry() *telemetry {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	return &telemetry{reader: reader, mp: mp}
}

// Totals collects every instrument. Counters are summed, split by their
// status attribute when they carry one, and histograms report their
// observation count under "<name>.count".
func (t *telemetry) Totals(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					name := m.Name
					if v, ok := dp.Attributes.Value(attribute.Key("status")); ok {
						name += "." + v.AsString()
					}
					out[name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name+".count"] += int64(dp.Count)
				}
			}
		}
	}
	return out, nil
}

// Log writes the collected totals as one structured record.
func (t *telemetry) Log(ctx context.Context, logger *slog.Logger) {
	totals, err := t.Totals(ctx)
	if err != nil {
		logger.Warn("failed to collect metrics", "error", err)
		return
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]any, 0, 2*len(names))
	for _, name := range names {
		args = append(args, name, totals[name])
	}
	logger.Info("metrics", args...)
}

// Shutdown flushes and stops the provider.
func (t *telemetry) Shutdown(ctx context.Context) error {
	return t.mp.Shutdown(ctx)
}
