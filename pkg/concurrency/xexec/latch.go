package xexec

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Latch 是批次屏障：计数递减到零时释放所有等待者。
type Latch struct {
	count    atomic.Int64
	released chan struct{}
	once     sync.Once
}

// NewLatch 创建计数为 n 的屏障，n <= 0 时立即释放。
func NewLatch(n int) *Latch {
	l := &Latch{released: make(chan struct{})}
	l.count.Store(int64(n))
	if n <= 0 {
		l.release()
	}
	return l
}

func (l *Latch) release() {
	l.once.Do(func() { close(l.released) })
}

// Done 递减计数，归零后的多余调用被忽略。
func (l *Latch) Done() {
	for {
		c := l.count.Load()
		if c <= 0 {
			return
		}
		if l.count.CompareAndSwap(c, c-1) {
			if c == 1 {
				l.release()
			}
			return
		}
	}
}

// Count 返回剩余计数。
func (l *Latch) Count() int {
	return int(max(l.count.Load(), 0))
}

// Released 返回在计数归零时关闭的 channel。
func (l *Latch) Released() <-chan struct{} {
	return l.released
}

// Wait 阻塞直到计数归零或 ctx 结束。
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout 最多等待 d，返回是否已释放。
func (l *Latch) WaitTimeout(d time.Duration) bool {
	select {
	case <-l.released:
		return true
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-l.released:
		return true
	case <-timer.C:
		return false
	}
}
