package xexec

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/observability/xmetrics"
	"github.com/phray/xtask/pkg/util/xpool"
)

// Registry 持有全部存活的 pool，按 PoolSpec.Key 惰性创建。
//
// 读路径无锁（sync.Map）；首次创建经 singleflight 合并，
// 并在 flight 内再次检查，保证每个 key 恰好创建一个 pool。
type Registry struct {
	pools  sync.Map // key -> *poolEntry
	group  singleflight.Group
	closed atomic.Bool

	logger     xlog.Logger
	poolLogger *slog.Logger

	gaugeMu    sync.Mutex
	unregister func() error
}

type poolEntry struct {
	spec PoolSpec
	pool *xpool.Pool
}

// RegistryOption 配置 Registry。
type RegistryOption func(*Registry)

// WithRegistryLogger 设置 Registry 的日志记录器，nil 被忽略。
func WithRegistryLogger(l xlog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPoolLogger 设置 pool 内部（worker 启停、panic）使用的 slog 记录器，nil 被忽略。
func WithPoolLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.poolLogger = l
		}
	}
}

// NewRegistry 创建空的 Registry。
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:     xlog.Default(),
		poolLogger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GetOrCreate 返回 spec.Key 对应的 pool，不存在时创建。
//
// 同一 key 的重复调用返回同一实例；参数与已有 pool 不一致时沿用已有 pool 并记录告警。
func (r *Registry) GetOrCreate(spec PoolSpec) (*xpool.Pool, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if v, ok := r.pools.Load(spec.Key); ok {
		return r.reuse(v.(*poolEntry), spec), nil
	}

	v, err, _ := r.group.Do(spec.Key, func() (any, error) {
		if v, ok := r.pools.Load(spec.Key); ok {
			return v, nil
		}
		if r.closed.Load() {
			return nil, ErrRegistryClosed
		}
		pool, err := xpool.New(spec.config(), xpool.WithName(spec.Key), xpool.WithLogger(r.poolLogger))
		if err != nil {
			return nil, &ConfigError{Key: spec.Key, Field: "pool", Value: spec.Key, Cause: err}
		}
		e := &poolEntry{spec: spec, pool: pool}
		r.pools.Store(spec.Key, e)
		r.logger.Info(context.Background(), "xexec: pool created",
			xlog.Pool(spec.Key),
			slog.String("desc", spec.Desc),
			slog.Int("core", spec.CoreSize),
			slog.Int("max", spec.MaxSize),
			slog.Int("queue", spec.QueueCapacity),
			slog.Duration("keep_alive", spec.KeepAlive),
			slog.String("policy", spec.Policy.String()))
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return r.reuse(v.(*poolEntry), spec), nil
}

func (r *Registry) reuse(e *poolEntry, spec PoolSpec) *xpool.Pool {
	if !e.spec.sameShape(spec) {
		r.logger.Warn(context.Background(), "xexec: pool spec mismatch, reusing existing pool",
			xlog.Pool(spec.Key),
			slog.Int("core", e.spec.CoreSize),
			slog.Int("requested_core", spec.CoreSize),
			slog.Int("max", e.spec.MaxSize),
			slog.Int("requested_max", spec.MaxSize))
	}
	return e.pool
}

// Lookup 返回已创建的 pool。
func (r *Registry) Lookup(key string) (*xpool.Pool, bool) {
	v, ok := r.pools.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*poolEntry).pool, true
}

// Len 返回已创建的 pool 数量。
func (r *Registry) Len() int {
	n := 0
	r.pools.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Stats 返回按名称排序的 pool 指标。
func (r *Registry) Stats() []xpool.Stats {
	var out []xpool.Stats
	r.pools.Range(func(_, v any) bool {
		out = append(out, v.(*poolEntry).pool.Stats())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterGauges 把全部 pool 的采样值注册为 OTel 异步 gauge，重复注册会替换之前的回调。
func (r *Registry) RegisterGauges(opts ...xmetrics.Option) error {
	unregister, err := xmetrics.RegisterPoolGauges(r.gaugeStats, opts...)
	if err != nil {
		return err
	}
	r.gaugeMu.Lock()
	prev := r.unregister
	r.unregister = unregister
	r.gaugeMu.Unlock()
	if prev != nil {
		return prev()
	}
	return nil
}

func (r *Registry) gaugeStats() []xmetrics.PoolStat {
	stats := r.Stats()
	out := make([]xmetrics.PoolStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, xmetrics.PoolStat{
			Pool:       s.Name,
			Workers:    s.Workers,
			Active:     s.Active,
			Queued:     s.Queued,
			CallerRuns: s.CallerRuns,
		})
	}
	return out
}

// Shutdown 关闭全部 pool 并等待已入队任务完成，之后 GetOrCreate 返回 ErrRegistryClosed。
//
// 分发路径从不调用 Shutdown：pool 的生命周期与进程一致，Shutdown 仅供进程退出与测试清理。
func (r *Registry) Shutdown(ctx context.Context) error {
	r.closed.Store(true)

	var errs []error
	r.gaugeMu.Lock()
	if r.unregister != nil {
		errs = append(errs, r.unregister())
		r.unregister = nil
	}
	r.gaugeMu.Unlock()

	r.pools.Range(func(_, v any) bool {
		if err := v.(*poolEntry).pool.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}
