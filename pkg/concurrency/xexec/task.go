package xexec

import (
	"context"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/phray/xtask/pkg/context/xctx"
	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
	"github.com/phray/xtask/pkg/resilience/xretry"
	"github.com/phray/xtask/pkg/util/xpool"
)

// DefaultDesc 是未提供描述时的任务描述。
const DefaultDesc = "DEFAULT"

// State 是任务信封的生命周期状态。
type State int32

const (
	StateCreated State = iota
	StateContextRestored
	StateRunning
	StateSucceeded
	StateFailed
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateContextRestored:
		return "context_restored"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateFinalized:
		return "finalized"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Job 是可以交给 Dispatcher 的任务信封，仅由 *Task 实现。
type Job interface {
	xpool.Task
	xpool.Dropper

	// Desc 返回任务描述。
	Desc() string
	// State 返回当前生命周期状态。
	State() State

	bind(b binding) error
	abandon(err error)
	isNil() bool
}

// binding 是提交时附加到任务上的批次信息，提交之后只读。
type binding struct {
	logger   xlog.Logger
	observer xmetrics.Observer
	hooks    Hooks
	pool     string
	batch    string
	latch    *Latch
	box      *ErrorBox
}

// Task 是任务信封：描述、工作函数，以及创建时捕获的环境上下文快照。
//
// 一个 Task 只能提交一次。
type Task[R any] struct {
	desc   string
	fn     func(ctx context.Context) (R, error)
	snap   xctx.Snapshot
	retry  xretry.Policy
	hooks  Hooks
	handle *Handle[R]

	state     atomic.Int32
	submitted atomic.Bool
	claimed   atomic.Bool

	b binding
}

var _ Job = (*Task[int])(nil)

// TaskOption 配置 Task。
type TaskOption func(*taskOptions)

type taskOptions struct {
	retry xretry.Policy
	hooks Hooks
}

// WithRetry 让工作函数失败后按固定间隔重试，attempts 为总尝试次数（包含首次）。
//
// 携带 IllegalArgument 错误码或被标记为不可恢复的错误不会重试。
func WithRetry(attempts uint, delay time.Duration) TaskOption {
	return func(o *taskOptions) {
		o.retry.Attempts = attempts
		o.retry.Delay = delay
	}
}

// WithRetryPolicy 使用完整的重试策略。
func WithRetryPolicy(p xretry.Policy) TaskOption {
	return func(o *taskOptions) { o.retry = p }
}

// WithTaskHooks 设置任务级生命周期回调，在 Dispatcher 级回调之后调用。
func WithTaskHooks(h Hooks) TaskOption {
	return func(o *taskOptions) { o.hooks = h }
}

// NewTask 创建任务信封并捕获 ctx 中的环境上下文。
//
// desc 为空时使用 DefaultDesc。fn 为 nil 的任务执行时以失败收尾。
func NewTask[R any](ctx context.Context, desc string, fn func(ctx context.Context) (R, error), opts ...TaskOption) *Task[R] {
	if desc == "" {
		desc = DefaultDesc
	}
	var o taskOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	t := &Task[R]{
		desc:   desc,
		fn:     fn,
		snap:   xctx.Capture(ctx),
		retry:  o.retry,
		hooks:  o.hooks,
		handle: newHandle[R](desc),
	}
	t.state.Store(int32(StateCreated))
	return t
}

// NewRunnable 创建无返回值的任务信封。
func NewRunnable(ctx context.Context, desc string, fn func(ctx context.Context) error, opts ...TaskOption) *Task[struct{}] {
	var wrapped func(context.Context) (struct{}, error)
	if fn != nil {
		wrapped = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		}
	}
	return NewTask(ctx, desc, wrapped, opts...)
}

// Desc 返回任务描述。
func (t *Task[R]) Desc() string { return t.desc }

// State 返回当前生命周期状态。
func (t *Task[R]) State() State { return State(t.state.Load()) }

// Snapshot 返回创建时捕获的环境上下文。
func (t *Task[R]) Snapshot() xctx.Snapshot { return t.snap }

// Handle 返回任务的结果句柄。
func (t *Task[R]) Handle() *Handle[R] { return t.handle }

func (t *Task[R]) isNil() bool { return t == nil }

func (t *Task[R]) setState(s State) { t.state.Store(int32(s)) }

func (t *Task[R]) bind(b binding) error {
	if !t.submitted.CompareAndSwap(false, true) {
		return ErrTaskReused
	}
	if b.logger == nil {
		b.logger = xlog.Default()
	}
	t.b = b
	return nil
}

// Run 在 worker 上执行任务，实现 xpool.Task。
//
// 安装快照、执行工作函数、记录错误，并且无论成败都完成收尾。
// 观察者 panic 或工作函数调用 runtime.Goexit 时，收尾仍然执行，任务按失败处理。
// 同一任务只会执行一次，重复调用被忽略。
func (t *Task[R]) Run() {
	if !t.claimed.CompareAndSwap(false, true) {
		return
	}
	if t.b.logger == nil {
		t.b.logger = xlog.Default()
	}
	start := time.Now()
	logger := t.b.logger

	var (
		val      R
		terr     *TaskError
		returned bool
		release  = func() {}
	)
	defer func() {
		if !returned {
			var zero R
			val, terr = zero, t.unwound(recover())
			t.setState(StateFailed)
			logger.Error(context.Background(), "xexec: task exited abnormally",
				xlog.Task(t.desc),
				xlog.Pool(t.b.pool),
				xlog.Batch(t.b.batch),
				xlog.Err(terr.Cause))
			if t.b.box != nil {
				t.b.box.Record(terr)
			}
		}
		release()
		t.finish(val, terr)
	}()

	ctx, rel := t.snap.Install(context.Background())
	release = rel
	t.setState(StateContextRestored)

	ctx, span := xmetrics.Start(ctx, t.b.observer, xmetrics.SpanOptions{
		Component: "xexec",
		Operation: "task",
		Kind:      xmetrics.KindConsumer,
		Attrs: []xmetrics.Attr{
			xmetrics.String(xlog.KeyTask, t.desc),
			xmetrics.String(xlog.KeyPool, t.b.pool),
			xmetrics.String(xlog.KeyBatch, t.b.batch),
		},
	})
	hooks := hookChain{t.b.hooks, t.hooks}
	hooks.before(ctx, logger, t.desc)

	t.setState(StateRunning)
	val, terr = t.invoke(ctx)
	if terr != nil {
		t.setState(StateFailed)
		logger.Error(ctx, "xexec: task failed",
			xlog.Task(t.desc),
			xlog.Pool(t.b.pool),
			xlog.Batch(t.b.batch),
			xlog.Code(terr.Code().Value),
			xlog.Err(terr.Cause))
		hooks.onError(ctx, logger, t.desc, terr)
		if t.b.box != nil {
			t.b.box.Record(terr)
		}
	} else {
		t.setState(StateSucceeded)
	}

	err := taskErr(terr)
	span.End(xmetrics.Result{Err: err})
	elapsed := time.Since(start)
	logger.Debug(ctx, "xexec: task finished",
		xlog.Task(t.desc),
		xlog.Pool(t.b.pool),
		xlog.Batch(t.b.batch),
		xlog.Duration(elapsed))
	hooks.end(ctx, logger, t.desc, err, elapsed)
	returned = true
}

// unwound 把非正常退出转换为 TaskError：panic 值包装为 UnknownError，Goexit 记为 errAbnormalExit。
func (t *Task[R]) unwound(r any) *TaskError {
	if r != nil {
		return newPanicError(t.desc, r, debug.Stack())
	}
	return newTaskError(t.desc, errAbnormalExit)
}

func (t *Task[R]) invoke(ctx context.Context) (val R, terr *TaskError) {
	if t.fn == nil {
		return val, newTaskError(t.desc, errNilWork)
	}
	defer func() {
		if r := recover(); r != nil {
			var zero R
			val, terr = zero, newPanicError(t.desc, r, debug.Stack())
		}
	}()

	var err error
	if t.retry.Enabled() {
		val, err = xretry.DoWithData(ctx, func() (R, error) {
			return t.fn(ctx)
		}, t.retry.Options()...)
	} else {
		val, err = t.fn(ctx)
	}
	if err != nil {
		var zero R
		return zero, newTaskError(t.desc, err)
	}
	return val, nil
}

// Drop 在任务被 pool 丢弃时收尾，实现 xpool.Dropper。
func (t *Task[R]) Drop(err error) {
	t.abandon(err)
}

// abandon 以失败收尾一个不会被执行的任务。
func (t *Task[R]) abandon(err error) {
	if !t.claimed.CompareAndSwap(false, true) {
		return
	}
	if t.b.logger == nil {
		t.b.logger = xlog.Default()
	}
	terr := newTaskError(t.desc, err)
	t.setState(StateFailed)
	t.b.logger.Warn(context.Background(), "xexec: task not executed",
		xlog.Task(t.desc),
		xlog.Pool(t.b.pool),
		xlog.Batch(t.b.batch),
		xlog.Err(err))
	if t.b.box != nil {
		t.b.box.Record(terr)
	}
	var zero R
	t.finish(zero, terr)
}

// finish 进入 Finalized：完成句柄并对屏障递减一次。
func (t *Task[R]) finish(val R, terr *TaskError) {
	t.setState(StateFinalized)
	t.handle.complete(val, raise(terr, t.desc))
	if t.b.latch != nil {
		t.b.latch.Done()
	}
}

func taskErr(te *TaskError) error {
	if te == nil {
		return nil
	}
	return te
}
