package xconf

import (
	"fmt"
	"strings"
	"time"

	"github.com/phray/xtask/pkg/concurrency/xexec"
	"github.com/phray/xtask/pkg/observability/xlog"
	"github.com/phray/xtask/pkg/util/xpool"
)

// Settings 是 xtask 配置文档：
//
//	log:
//	  level: info
//	  format: text
//	  file: ""
//	dispatch:
//	  default_timeout: 30s
//	pools:
//	  - key: COMMON
//	    core_size: 4
//	    max_size: 8
//	    queue_capacity: 512
//	    keep_alive: 60s
//	    policy: caller_runs
type Settings struct {
	Log      LogSettings      `koanf:"log"`
	Dispatch DispatchSettings `koanf:"dispatch"`
	Pools    []PoolSettings   `koanf:"pools"`
}

// LogSettings 对应 xlog.Builder 的参数。File 为空时输出到 stderr。
type LogSettings struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	AddSource  bool   `koanf:"add_source"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// DispatchSettings 是 Dispatcher 的默认参数。
type DispatchSettings struct {
	// DefaultTimeout 为 Go duration 字符串，空值使用 xexec.DefaultCollectTimeout。
	DefaultTimeout string `koanf:"default_timeout"`
}

// PoolSettings 是一条 pool 配置。KeepAlive 为 duration 字符串，Policy 为策略名。
type PoolSettings struct {
	Key           string `koanf:"key"`
	Desc          string `koanf:"desc"`
	CoreSize      int    `koanf:"core_size"`
	MaxSize       int    `koanf:"max_size"`
	QueueCapacity int    `koanf:"queue_capacity"`
	KeepAlive     string `koanf:"keep_alive"`
	Policy        string `koanf:"policy"`
}

// Validate 校验全部字段。
func (s Settings) Validate() error {
	if _, err := xlog.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidValue, err)
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidValue, s.Log.Format)
	}
	if _, err := s.DefaultTimeout(); err != nil {
		return err
	}
	_, err := s.PoolSpecs()
	return err
}

// DefaultTimeout 返回 Collect 的默认超时。
func (s Settings) DefaultTimeout() (time.Duration, error) {
	if s.Dispatch.DefaultTimeout == "" {
		return xexec.DefaultCollectTimeout, nil
	}
	d, err := time.ParseDuration(s.Dispatch.DefaultTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: dispatch.default_timeout %q", ErrInvalidValue, s.Dispatch.DefaultTimeout)
	}
	return d, nil
}

// PoolSpecs 把 pools 转换为 xexec.PoolSpec 并逐条校验。
func (s Settings) PoolSpecs() ([]xexec.PoolSpec, error) {
	specs := make([]xexec.PoolSpec, 0, len(s.Pools))
	for i, p := range s.Pools {
		spec, err := p.spec()
		if err != nil {
			return nil, fmt.Errorf("%w: pools[%d]: %w", ErrInvalidValue, i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (p PoolSettings) spec() (xexec.PoolSpec, error) {
	spec := xexec.PoolSpec{
		Key:           p.Key,
		Desc:          p.Desc,
		CoreSize:      p.CoreSize,
		MaxSize:       p.MaxSize,
		QueueCapacity: p.QueueCapacity,
		Policy:        xpool.CallerRuns,
	}
	if p.KeepAlive != "" {
		d, err := time.ParseDuration(p.KeepAlive)
		if err != nil {
			return xexec.PoolSpec{}, fmt.Errorf("keep_alive %q: %w", p.KeepAlive, err)
		}
		spec.KeepAlive = d
	}
	if p.Policy != "" {
		policy, err := xpool.ParsePolicy(p.Policy)
		if err != nil {
			return xexec.PoolSpec{}, err
		}
		spec.Policy = policy
	}
	if err := spec.Validate(); err != nil {
		return xexec.PoolSpec{}, err
	}
	return spec, nil
}

// Catalog 用 pools 构建 Catalog。未配置任何 pool 时返回只含 Common 的默认 Catalog。
func (s Settings) Catalog() (*xexec.Catalog, error) {
	specs, err := s.PoolSpecs()
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return xexec.DefaultCatalog(), nil
	}
	return xexec.NewCatalog(specs...)
}

// Builder 返回按 log 段配置好的 xlog.Builder。
func (l LogSettings) Builder() *xlog.Builder {
	b := xlog.New().
		SetLevelString(l.Level).
		SetFormat(l.Format).
		SetAddSource(l.AddSource)
	if l.File != "" {
		b = b.SetRotation(l.File, xlog.Rotation{
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   l.Compress,
		})
	}
	return b
}
