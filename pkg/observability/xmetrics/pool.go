package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PoolStat 是单个 pool 的采样值。
type PoolStat struct {
	Pool       string
	Workers    int
	Active     int
	Queued     int
	CallerRuns int64
}

// PoolStatsSource 在每次采集时返回当前所有 pool 的采样值。
type PoolStatsSource func() []PoolStat

// RegisterPoolGauges 注册 pool 的异步 gauge，返回的函数用于注销回调。
func RegisterPoolGauges(source PoolStatsSource, opts ...Option) (func() error, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	meter := newOTelConfig(opts).meterProvider.Meter(defaultInstrumentationName)

	workers, err := meter.Int64ObservableGauge("xtask.pool.workers",
		metric.WithDescription("live workers"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: workers: %w", ErrCreateInstrument, err)
	}
	active, err := meter.Int64ObservableGauge("xtask.pool.active",
		metric.WithDescription("tasks running"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: active: %w", ErrCreateInstrument, err)
	}
	queued, err := meter.Int64ObservableGauge("xtask.pool.queued",
		metric.WithDescription("tasks waiting in queue"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: queued: %w", ErrCreateInstrument, err)
	}
	callerRuns, err := meter.Int64ObservableCounter("xtask.pool.caller_runs",
		metric.WithDescription("tasks executed by the submitter"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: caller_runs: %w", ErrCreateInstrument, err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, s := range source() {
			set := metric.WithAttributes(attribute.String("pool", s.Pool))
			o.ObserveInt64(workers, int64(s.Workers), set)
			o.ObserveInt64(active, int64(s.Active), set)
			o.ObserveInt64(queued, int64(s.Queued), set)
			o.ObserveInt64(callerRuns, s.CallerRuns, set)
		}
		return nil
	}, workers, active, queued, callerRuns)
	if err != nil {
		return nil, fmt.Errorf("%w: callback: %w", ErrCreateInstrument, err)
	}
	return reg.Unregister, nil
}
