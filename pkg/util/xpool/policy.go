package xpool

import (
	"fmt"
	"strings"
)

// Policy 是队列与 worker 都已饱和时的处理策略。
//
// 零值为 CallerRuns。
type Policy int

const (
	// CallerRuns 在提交方 goroutine 上同步执行任务。
	CallerRuns Policy = iota
	// Abort 拒绝任务并返回错误。
	Abort
	// Discard 静默丢弃新任务。
	Discard
	// DiscardOldest 淘汰最早入队的任务，再尝试接收新任务。
	DiscardOldest
)

var policyNames = [...]string{
	CallerRuns:    "caller_runs",
	Abort:         "abort",
	Discard:       "discard",
	DiscardOldest: "discard_oldest",
}

// Valid 报告策略是否为已知取值。
func (p Policy) Valid() bool {
	return p >= CallerRuns && p <= DiscardOldest
}

func (p Policy) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// ParsePolicy 解析策略名称。
//
// 忽略大小写以及 "_" / "-"，因此 "caller_runs"、"CallerRuns"、"CALLER-RUNS" 等价。
func ParsePolicy(s string) (Policy, error) {
	norm := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for i, name := range policyNames {
		if norm == strings.ReplaceAll(name, "_", "") {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

// MarshalText 实现 encoding.TextMarshaler。
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
