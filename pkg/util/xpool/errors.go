package xpool

import "errors"

var (
	// ErrNilTask 表示提交的任务为 nil。
	ErrNilTask = errors.New("xpool: nil task")

	// ErrPoolStopped 表示 pool 已关闭，无法提交任务。
	ErrPoolStopped = errors.New("xpool: pool is stopped")

	// ErrRejected 表示任务被 Abort 策略拒绝。
	ErrRejected = errors.New("xpool: task rejected")

	// ErrDiscarded 表示任务被 Discard / DiscardOldest 策略丢弃，通过 Dropper.Drop 传递。
	ErrDiscarded = errors.New("xpool: task discarded")

	// ErrInvalidWorkers 表示 Core/Max 配置无效。
	ErrInvalidWorkers = errors.New("xpool: invalid worker count")

	// ErrInvalidQueueSize 表示队列容量无效。
	ErrInvalidQueueSize = errors.New("xpool: invalid queue size")

	// ErrInvalidKeepAlive 表示 KeepAlive 为负数。
	ErrInvalidKeepAlive = errors.New("xpool: invalid keep-alive")

	// ErrInvalidPolicy 表示未知的饱和策略。
	ErrInvalidPolicy = errors.New("xpool: invalid saturation policy")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xpool: nil context")
)
