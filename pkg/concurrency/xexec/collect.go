package xexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
)

// Collect 并发执行 tasks，并按提交顺序把成功结果折叠进 collector。
//
// timeout <= 0 时使用 Dispatcher 的默认超时。屏障在 timeout 内未释放时
// 返回 *TimeoutError 且不调用 Fill；任务失败时返回批次记录的错误。
// 出错时返回 R 的零值，已折叠的部分结果不返回。
//
// ctx 结束不会中止 Collect：仍逐个等待句柄（每个最多 timeout）。
func Collect[T, R any](ctx context.Context, d *Dispatcher, tasks []*Task[T], collector Collector[T, R],
	timeout time.Duration, spec PoolSpec, desc string) (R, error) {
	var zero R
	if collector == nil {
		return zero, ErrNilCollector
	}
	if d == nil {
		return zero, ErrNilRegistry
	}
	if ctx == nil {
		ctx = context.Background()
	}
	collector.Init()

	live := make([]*Task[T], 0, len(tasks))
	jobs := make([]Job, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			live = append(live, t)
			jobs = append(jobs, t)
		}
	}
	if len(live) == 0 {
		return collector.Get(), nil
	}
	if timeout <= 0 {
		timeout = d.defaultTimeout
	}

	b, err := d.newBatch(spec, desc, len(live))
	if err != nil {
		return zero, err
	}
	ctx, span := xmetrics.Start(ctx, d.observer, xmetrics.SpanOptions{
		Component: "xexec",
		Operation: "collect",
		Kind:      xmetrics.KindProducer,
		Attrs: []xmetrics.Attr{
			xmetrics.String(xlog.KeyTask, desc),
			xmetrics.String(xlog.KeyPool, spec.Key),
			xmetrics.String(xlog.KeyBatch, b.id),
			xmetrics.Int(xlog.KeyCount, len(live)),
			xmetrics.Duration("timeout", timeout),
		},
	})
	d.submit(ctx, b, jobs)

	out, err := collectResults(ctx, d, b, live, collector, timeout)
	span.End(xmetrics.Result{Err: err})
	if err != nil {
		return zero, err
	}
	return out, nil
}

func collectResults[T, R any](ctx context.Context, d *Dispatcher, b *batch, live []*Task[T],
	collector Collector[T, R], timeout time.Duration) (R, error) {
	var zero R

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-b.latch.Released():
	case <-timer.C:
		d.logger.Warn(ctx, "xexec: collect timed out",
			xlog.Task(b.desc),
			xlog.Batch(b.id),
			slog.Int("pending", b.latch.Count()),
			xlog.Duration(timeout))
		return zero, &TimeoutError{Desc: b.desc, Timeout: timeout}
	case <-ctx.Done():
		d.logger.Warn(ctx, "xexec: collect wait interrupted, draining handles",
			xlog.Task(b.desc),
			xlog.Batch(b.id),
			xlog.Err(ctx.Err()))
	}

	for _, t := range live {
		if te := b.box.Load(); te != nil {
			return zero, d.failed(ctx, b, te)
		}
		v, err := t.handle.GetTimeout(timeout)
		if err != nil {
			var timeoutErr *TimeoutError
			if errors.As(err, &timeoutErr) {
				return zero, &TimeoutError{Desc: b.desc, Timeout: timeout}
			}
			if te := b.box.Load(); te != nil {
				return zero, d.failed(ctx, b, te)
			}
			return zero, err
		}
		collector.Fill(v)
	}
	return collector.Get(), nil
}

func (d *Dispatcher) failed(ctx context.Context, b *batch, te *TaskError) error {
	d.logger.Error(ctx, "xexec: batch failed",
		xlog.Task(b.desc),
		xlog.Batch(b.id),
		xlog.Code(te.Code().Value),
		xlog.Err(te))
	return raise(te, b.desc)
}

// CollectNamed 按 key 在 Catalog 中查找 PoolSpec 后执行 Collect。
func CollectNamed[T, R any](ctx context.Context, d *Dispatcher, tasks []*Task[T], collector Collector[T, R],
	timeout time.Duration, key, desc string) (R, error) {
	var zero R
	if d == nil {
		return zero, ErrNilRegistry
	}
	spec, ok := d.catalog.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnknownPool, key)
	}
	return Collect(ctx, d, tasks, collector, timeout, spec, desc)
}
