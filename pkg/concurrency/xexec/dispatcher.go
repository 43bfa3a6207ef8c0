package xexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
	"github.com/phray/xtask/pkg/util/xpool"
)

// Dispatcher 把任务批次提交到 Registry 中的 pool 并等待结果。
//
// Dispatcher 无状态（除配置外），可被多个 goroutine 并发使用。
type Dispatcher struct {
	registry       *Registry
	catalog        *Catalog
	logger         xlog.Logger
	observer       xmetrics.Observer
	hooks          Hooks
	defaultTimeout time.Duration
}

// New 创建 Dispatcher。
func New(registry *Registry, opts ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	d := &Dispatcher{
		registry:       registry,
		catalog:        DefaultCatalog(),
		logger:         xlog.Default(),
		observer:       xmetrics.NoopObserver{},
		defaultTimeout: DefaultCollectTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Registry 返回底层 Registry。
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Catalog 返回配置表。
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// batch 是一次分发的共享状态。
type batch struct {
	id    string
	desc  string
	spec  PoolSpec
	pool  *xpool.Pool
	latch *Latch
	box   *ErrorBox
}

func (d *Dispatcher) newBatch(spec PoolSpec, desc string, n int) (*batch, error) {
	pool, err := d.registry.GetOrCreate(spec)
	if err != nil {
		return nil, err
	}
	return &batch{
		id:    uuid.NewString(),
		desc:  desc,
		spec:  spec,
		pool:  pool,
		latch: NewLatch(n),
		box:   &ErrorBox{},
	}, nil
}

// submit 绑定并提交每个任务。绑定失败或被 pool 拒绝的任务直接以失败收尾。
func (d *Dispatcher) submit(ctx context.Context, b *batch, jobs []Job) {
	d.logger.Info(ctx, "xexec: dispatch batch",
		xlog.Task(b.desc),
		xlog.Pool(b.spec.Key),
		xlog.Batch(b.id),
		xlog.Count(int64(len(jobs))),
		slog.Int("workers", b.pool.Workers()),
		slog.Int("active", b.pool.Active()),
		slog.Int("queued", b.pool.Queued()))

	for _, j := range jobs {
		err := j.bind(binding{
			logger:   d.logger,
			observer: d.observer,
			hooks:    d.hooks,
			pool:     b.spec.Key,
			batch:    b.id,
			latch:    b.latch,
			box:      b.box,
		})
		if err != nil {
			b.box.Record(newTaskError(j.Desc(), err))
			b.latch.Done()
			continue
		}
		if err := b.pool.Execute(j); err != nil {
			j.abandon(err)
		}
	}
}

// RunBatch 在 spec 对应的 pool 上执行全部任务，阻塞直到所有任务收尾。
//
// nil 任务被忽略；没有任务时立即返回 nil 且不访问 pool。
// 所有任务结束后若有失败，返回其中一个：原因携带错误码时原样返回，否则为 *ExecutionError。
// ctx 结束导致等待中断时返回 *UnknownError，已提交的任务继续运行。
func (d *Dispatcher) RunBatch(ctx context.Context, tasks []Job, spec PoolSpec, desc string) error {
	jobs := compactJobs(tasks)
	if len(jobs) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := d.newBatch(spec, desc, len(jobs))
	if err != nil {
		return err
	}

	ctx, span := xmetrics.Start(ctx, d.observer, xmetrics.SpanOptions{
		Component: "xexec",
		Operation: "batch",
		Kind:      xmetrics.KindProducer,
		Attrs: []xmetrics.Attr{
			xmetrics.String(xlog.KeyTask, desc),
			xmetrics.String(xlog.KeyPool, spec.Key),
			xmetrics.String(xlog.KeyBatch, b.id),
			xmetrics.Int(xlog.KeyCount, len(jobs)),
		},
	})
	d.submit(ctx, b, jobs)
	err = d.await(ctx, b)
	span.End(xmetrics.Result{Err: err})
	return err
}

// RunNamed 按 key 在 Catalog 中查找 PoolSpec 后执行 RunBatch。
func (d *Dispatcher) RunNamed(ctx context.Context, tasks []Job, key, desc string) error {
	spec, ok := d.catalog.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, key)
	}
	return d.RunBatch(ctx, tasks, spec, desc)
}

// Run 是 RunBatch 的便捷形式。
func (d *Dispatcher) Run(ctx context.Context, spec PoolSpec, desc string, tasks ...Job) error {
	return d.RunBatch(ctx, tasks, spec, desc)
}

func (d *Dispatcher) await(ctx context.Context, b *batch) error {
	if err := b.latch.Wait(ctx); err != nil {
		d.logger.Warn(ctx, "xexec: batch wait interrupted",
			xlog.Task(b.desc),
			xlog.Batch(b.id),
			slog.Int("pending", b.latch.Count()),
			xlog.Err(err))
		return &UnknownError{Desc: b.desc, Value: err, Cause: err}
	}
	if te := b.box.Load(); te != nil {
		d.logger.Error(ctx, "xexec: batch failed",
			xlog.Task(b.desc),
			xlog.Batch(b.id),
			xlog.Code(te.Code().Value),
			xlog.Err(te))
		return raise(te, b.desc)
	}
	return nil
}

// Submit 提交单个任务，立即返回结果句柄。
//
// task 为 nil 时返回 (nil, nil)。pool 拒绝任务时句柄已以失败完成，同时返回该错误。
func Submit[R any](ctx context.Context, d *Dispatcher, task *Task[R], spec PoolSpec) (*Handle[R], error) {
	if task == nil {
		return nil, nil
	}
	if d == nil {
		return nil, ErrNilRegistry
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := d.registry.GetOrCreate(spec)
	if err != nil {
		return nil, err
	}
	err = task.bind(binding{
		logger:   d.logger,
		observer: d.observer,
		hooks:    d.hooks,
		pool:     spec.Key,
		box:      &ErrorBox{},
	})
	if err != nil {
		return nil, err
	}
	d.logger.Debug(ctx, "xexec: submit task",
		xlog.Task(task.Desc()),
		xlog.Pool(spec.Key),
		slog.Int("queued", pool.Queued()))
	if err := pool.Execute(task); err != nil {
		task.abandon(err)
		return task.handle, err
	}
	return task.handle, nil
}

func compactJobs(tasks []Job) []Job {
	jobs := make([]Job, 0, len(tasks))
	for _, j := range tasks {
		if j == nil || j.isNil() {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs
}
