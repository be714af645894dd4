package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	goCred "github.com/MrEthical07/goCred"
	otelexport "github.com/MrEthical07/goCred/metrics/export/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// verifyOutcomes reads the engine's verify counters through the
// OpenTelemetry exporter, keyed by outcome attribute.
func verifyOutcomes(ctx context.Context, engine *goCred.Engine) (map[string]int64, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	exp, err := otelexport.New(provider.Meter("gocred-loadtest"), engine)
	if err != nil {
		return nil, err
	}
	defer func() { _ = exp.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "gocred.verify" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok {
					out[v.AsString()] = dp.Value
				}
			}
		}
	}
	return out, nil
}

func formatOutcomes(outcomes map[string]int64) string {
	var b strings.Builder
	b.WriteString("engine:")
	for _, k := range slices.Sorted(maps.Keys(outcomes)) {
		fmt.Fprintf(&b, " %s=%d", k, outcomes[k])
	}
	return b.String()
}
