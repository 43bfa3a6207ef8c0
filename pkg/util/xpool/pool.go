package xpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxWorkers   = 1 << 16
	maxQueueSize = 1 << 24
)

// Task 是 Pool 执行的最小单元。
type Task interface {
	Run()
}

// TaskFunc 将普通函数适配为 Task。
type TaskFunc func()

// Run 执行函数本身。
func (f TaskFunc) Run() { f() }

// Dropper 是 Task 的可选接口。
//
// 任务被 Discard / DiscardOldest 策略丢弃时，Pool 调用 Drop 通知提交方该任务不会被执行。
type Dropper interface {
	Drop(err error)
}

// Config 描述 Pool 的容量与饱和行为。
type Config struct {
	Core          int
	Max           int
	QueueCapacity int
	KeepAlive     time.Duration
	Policy        Policy
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.Core < 1 || c.Core > maxWorkers {
		return fmt.Errorf("%w: core=%d", ErrInvalidWorkers, c.Core)
	}
	if c.Max < c.Core || c.Max > maxWorkers {
		return fmt.Errorf("%w: max=%d core=%d", ErrInvalidWorkers, c.Max, c.Core)
	}
	if c.QueueCapacity < 0 || c.QueueCapacity > maxQueueSize {
		return fmt.Errorf("%w: %d", ErrInvalidQueueSize, c.QueueCapacity)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidKeepAlive, c.KeepAlive)
	}
	if !c.Policy.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, c.Policy)
	}
	return nil
}

// Stats 是 Pool 某一时刻的运行指标。
type Stats struct {
	Name          string
	Core          int
	Max           int
	QueueCapacity int
	Policy        Policy
	Workers       int
	Active        int
	Queued        int
	Completed     int64
	CallerRuns    int64
	Rejected      int64
	Discarded     int64
	Panics        int64
}

// Pool 是有界、可伸缩的任务执行器。
type Pool struct {
	cfg    Config
	name   string
	logger *slog.Logger

	queue chan Task

	// state 保护 closed：Execute 持读锁完成入队，Shutdown 持写锁关闭，
	// 保证关闭之后不会再有任务进入队列。
	state  sync.RWMutex
	closed bool

	// mu 保护 workers。
	mu      sync.Mutex
	workers int

	seq        atomic.Int64
	active     atomic.Int64
	completed  atomic.Int64
	callerRuns atomic.Int64
	rejected   atomic.Int64
	discarded  atomic.Int64
	panics     atomic.Int64

	wg       sync.WaitGroup
	stopped  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once
}

// 编译期断言：Pool 实现 io.Closer。
var _ io.Closer = (*Pool)(nil)

// New 创建 Pool。worker 按需启动，New 本身不启动任何 goroutine。
func New(cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Pool{
		cfg:     cfg,
		name:    o.name,
		logger:  o.logger,
		queue:   make(chan Task, cfg.QueueCapacity),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Execute 提交任务。
//
// CallerRuns 策略下任务可能在当前 goroutine 上同步执行完毕后才返回。
// Abort 策略拒绝时返回包装了 ErrRejected 的错误；Discard 类策略返回 nil。
func (p *Pool) Execute(t Task) error {
	if t == nil {
		return ErrNilTask
	}

	p.state.RLock()
	if p.closed {
		p.state.RUnlock()
		return ErrPoolStopped
	}
	inline, err := p.dispatch(t)
	p.state.RUnlock()

	if inline {
		p.callerRuns.Add(1)
		p.run(t, "caller")
	}
	return err
}

// dispatch 在 state 读锁内执行，返回是否需要由调用方同步执行。
func (p *Pool) dispatch(t Task) (inline bool, err error) {
	if p.tryStartWorker(t, p.cfg.Core) {
		return false, nil
	}
	if p.offer(t) {
		return false, nil
	}
	if p.tryStartWorker(t, p.cfg.Max) {
		return false, nil
	}
	return p.saturate(t)
}

func (p *Pool) tryStartWorker(first Task, limit int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workers >= limit {
		return false
	}
	p.startWorkerLocked(first)
	return true
}

// offer 非阻塞入队。入队成功但所有 worker 均已空闲退出时补启一个 worker。
func (p *Pool) offer(t Task) bool {
	select {
	case p.queue <- t:
	default:
		return false
	}
	p.mu.Lock()
	if p.workers == 0 {
		p.startWorkerLocked(nil)
	}
	p.mu.Unlock()
	return true
}

func (p *Pool) saturate(t Task) (bool, error) {
	switch p.cfg.Policy {
	case CallerRuns:
		return true, nil
	case Abort:
		p.rejected.Add(1)
		return false, fmt.Errorf("%w: pool %s saturated (workers=%d, queued=%d)",
			ErrRejected, p.name, p.Workers(), len(p.queue))
	case Discard:
		p.drop(t, ErrDiscarded)
		return false, nil
	case DiscardOldest:
		for {
			select {
			case old := <-p.queue:
				p.drop(old, ErrDiscarded)
			default:
				// 同步移交队列没有可淘汰的任务，新任务本身被丢弃
				p.drop(t, ErrDiscarded)
				return false, nil
			}
			if p.offer(t) {
				return false, nil
			}
		}
	default:
		return false, fmt.Errorf("%w: %s", ErrInvalidPolicy, p.cfg.Policy)
	}
}

func (p *Pool) drop(t Task, err error) {
	p.discarded.Add(1)
	if d, ok := t.(Dropper); ok {
		d.Drop(err)
	}
}

func (p *Pool) startWorkerLocked(first Task) {
	p.workers++
	p.wg.Add(1)
	name := p.name + "_" + strconv.FormatInt(p.seq.Add(1), 10)
	go p.worker(name, first)
}

func (p *Pool) worker(name string, first Task) {
	exited := false
	defer func() {
		if !exited {
			p.abandonWorker(name)
		}
		p.wg.Done()
	}()
	p.logger.Debug("xpool: worker started", "pool", p.name, "worker", name)

	if first != nil {
		p.run(first, name)
	}

	var idle <-chan time.Time
	var timer *time.Timer
	if p.cfg.KeepAlive > 0 {
		timer = time.NewTimer(p.cfg.KeepAlive)
		defer timer.Stop()
	}

	for {
		if timer != nil {
			timer.Reset(p.cfg.KeepAlive)
			idle = timer.C
		}
		select {
		case t := <-p.queue:
			p.run(t, name)
		case <-idle:
			if p.retire() {
				p.logger.Debug("xpool: worker idle exit", "pool", p.name, "worker", name)
				exited = true
				return
			}
		case <-p.stopped:
			p.drain(name)
			p.mu.Lock()
			p.workers--
			p.mu.Unlock()
			exited = true
			return
		}
	}
}

// abandonWorker 注销被 runtime.Goexit 终止的 worker，队列非空时补启一个。
func (p *Pool) abandonWorker(name string) {
	p.logger.Warn("xpool: worker exited abnormally", "pool", p.name, "worker", name)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.workers--
	if len(p.queue) > 0 {
		p.startWorkerLocked(nil)
	}
}

// retire 在队列为空时注销当前 worker。
// 与 offer 共用 mu：入队发生在 retire 之前则继续工作，之后则由 offer 补启 worker。
func (p *Pool) retire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) > 0 {
		return false
	}
	p.workers--
	return true
}

func (p *Pool) drain(name string) {
	for {
		select {
		case t := <-p.queue:
			p.run(t, name)
		default:
			return
		}
	}
}

func (p *Pool) run(t Task, worker string) {
	p.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error("xpool: task panic recovered",
				"pool", p.name,
				"worker", worker,
				"panic", r,
				"stack", string(debug.Stack()))
		}
		p.active.Add(-1)
		p.completed.Add(1)
	}()
	t.Run()
}

// Shutdown 停止接收新任务，并等待已入队任务执行完毕。
//
// ctx 到期时立即返回 ctx.Err()，残留 worker 在后台继续处理，可通过 Done 等待。
func (p *Pool) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.stopOnce.Do(func() {
		p.state.Lock()
		p.closed = true
		close(p.stopped)
		p.state.Unlock()
		go func() {
			p.wg.Wait()
			p.doneOnce.Do(func() { close(p.done) })
		}()
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 等价于 Shutdown(context.Background())。
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Done 返回在所有 worker 退出后关闭的 channel。仅在 Shutdown 之后才会关闭。
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Name 返回 pool 名称。
func (p *Pool) Name() string { return p.name }

// Config 返回创建时的配置。
func (p *Pool) Config() Config { return p.cfg }

// Workers 返回当前存活的 worker 数。
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Active 返回正在执行任务的数量（含 CallerRuns 同步执行的任务）。
func (p *Pool) Active() int { return int(p.active.Load()) }

// Queued 返回队列中等待的任务数。
func (p *Pool) Queued() int { return len(p.queue) }

// CallerRuns 返回由提交方同步执行的任务总数。
func (p *Pool) CallerRuns() int64 { return p.callerRuns.Load() }

// Stats 返回运行指标快照。
func (p *Pool) Stats() Stats {
	return Stats{
		Name:          p.name,
		Core:          p.cfg.Core,
		Max:           p.cfg.Max,
		QueueCapacity: p.cfg.QueueCapacity,
		Policy:        p.cfg.Policy,
		Workers:       p.Workers(),
		Active:        p.Active(),
		Queued:        p.Queued(),
		Completed:     p.completed.Load(),
		CallerRuns:    p.callerRuns.Load(),
		Rejected:      p.rejected.Load(),
		Discarded:     p.discarded.Load(),
		Panics:        p.panics.Load(),
	}
}
