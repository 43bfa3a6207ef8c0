package xexec

import (
	"time"

	"github.com/phray/xtask/pkg/util/xpool"
)

// PoolSpec 是具名 worker pool 的配置，创建后不可变。
type PoolSpec struct {
	Key           string
	Desc          string
	CoreSize      int
	MaxSize       int
	QueueCapacity int
	KeepAlive     time.Duration
	Policy        xpool.Policy
}

// Common 是默认的通用 pool。
var Common = PoolSpec{
	Key:           "COMMON",
	Desc:          "通用",
	CoreSize:      4,
	MaxSize:       8,
	QueueCapacity: 512,
	KeepAlive:     60 * time.Second,
	Policy:        xpool.CallerRuns,
}

// Validate 校验配置，违反时返回 *ConfigError。
func (s PoolSpec) Validate() error {
	switch {
	case s.Key == "":
		return &ConfigError{Key: s.Key, Field: "key", Value: s.Key, Reason: "must not be empty"}
	case s.CoreSize < 1:
		return &ConfigError{Key: s.Key, Field: "core_size", Value: s.CoreSize, Reason: "must be >= 1"}
	case s.MaxSize < s.CoreSize:
		return &ConfigError{Key: s.Key, Field: "max_size", Value: s.MaxSize, Reason: "must be >= core_size"}
	case s.QueueCapacity < 0:
		return &ConfigError{Key: s.Key, Field: "queue_capacity", Value: s.QueueCapacity, Reason: "must be >= 0"}
	case s.KeepAlive < 0:
		return &ConfigError{Key: s.Key, Field: "keep_alive", Value: s.KeepAlive, Reason: "must be >= 0"}
	case !s.Policy.Valid():
		return &ConfigError{Key: s.Key, Field: "policy", Value: s.Policy, Reason: "unknown saturation policy"}
	}
	return nil
}

func (s PoolSpec) config() xpool.Config {
	return xpool.Config{
		Core:          s.CoreSize,
		Max:           s.MaxSize,
		QueueCapacity: s.QueueCapacity,
		KeepAlive:     s.KeepAlive,
		Policy:        s.Policy,
	}
}

// sameShape 比较除 Desc 以外的运行参数。
func (s PoolSpec) sameShape(o PoolSpec) bool {
	return s.CoreSize == o.CoreSize && s.MaxSize == o.MaxSize &&
		s.QueueCapacity == o.QueueCapacity && s.KeepAlive == o.KeepAlive &&
		s.Policy == o.Policy
}
