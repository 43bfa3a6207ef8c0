package main

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/phray/xtask/pkg/observability/xmetrics"
)

const (
	instrumentationName = "github.com/phray/xtask/cmd/xtaskctl"
	operationTotal      = "xtask.operation.total"
)

// telemetry 是进程内的 OTel SDK：span 只用于生成 trace 标识，指标由 ManualReader 汇总后打印。
type telemetry struct {
	reader *sdkmetric.ManualReader
	meters *sdkmetric.MeterProvider
	traces *sdktrace.TracerProvider
}

func newTelemetry() *telemetry {
	reader := sdkmetric.NewManualReader()
	return &telemetry{
		reader: reader,
		meters: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		traces: sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample())),
	}
}

func (t *telemetry) observer() (xmetrics.Observer, error) {
	return xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName(instrumentationName),
		xmetrics.WithTracerProvider(t.traces),
		xmetrics.WithMeterProvider(t.meters))
}

func (t *telemetry) shutdown(ctx context.Context) error {
	return errors.Join(t.traces.Shutdown(ctx), t.meters.Shutdown(ctx))
}

// opCount 是一个 component.operation/status 组合的累计次数。
type opCount struct {
	name   string
	status string
	count  int64
}

func (t *telemetry) operations(ctx context.Context) ([]opCount, error) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	var out []opCount
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != operationTotal {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out = append(out, opCount{
					name:   attr(dp.Attributes, "component") + "." + attr(dp.Attributes, "operation"),
					status: attr(dp.Attributes, "status"),
					count:  dp.Value,
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b opCount) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return strings.Compare(a.status, b.status)
	})
	return out, nil
}

func attr(set attribute.Set, key attribute.Key) string {
	if v, ok := set.Value(key); ok {
		return v.AsString()
	}
	return ""
}

func printOperations(w io.Writer, ops []opCount) error {
	table := tablewriter.NewWriter(w)
	table.Header("Operation", "Status", "Count")
	for _, op := range ops {
		if err := table.Append(op.name, op.status, op.count); err != nil {
			return err
		}
	}
	return table.Render()
}
