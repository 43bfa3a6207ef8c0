package xexec

import (
	"context"
	"sync"
	"time"
)

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Handle 是单个任务的延迟结果。
type Handle[R any] struct {
	desc string
	done chan struct{}
	once sync.Once
	val  R
	err  error
}

func newHandle[R any](desc string) *Handle[R] {
	return &Handle[R]{desc: desc, done: make(chan struct{})}
}

func (h *Handle[R]) complete(v R, err error) {
	h.once.Do(func() {
		h.val, h.err = v, err
		close(h.done)
	})
}

// Desc 返回任务描述。
func (h *Handle[R]) Desc() string {
	if h == nil {
		return ""
	}
	return h.desc
}

// Done 返回在任务结束时关闭的 channel。nil Handle 返回已关闭的 channel。
func (h *Handle[R]) Done() <-chan struct{} {
	if h == nil {
		return closedChan
	}
	return h.done
}

// Get 等待任务结束并返回结果，ctx 结束时返回 ctx.Err()。
func (h *Handle[R]) Get(ctx context.Context) (R, error) {
	var zero R
	if h == nil {
		return zero, ErrNilHandle
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// GetTimeout 最多等待 d，超时返回 *TimeoutError。
func (h *Handle[R]) GetTimeout(d time.Duration) (R, error) {
	var zero R
	if h == nil {
		return zero, ErrNilHandle
	}
	select {
	case <-h.done:
		return h.val, h.err
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-h.done:
		return h.val, h.err
	case <-timer.C:
		return zero, &TimeoutError{Desc: h.desc, Timeout: d}
	}
}
