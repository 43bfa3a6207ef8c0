package xexec

import "sync/atomic"

// ErrorBox 是批次的单次赋值错误槽，先写者胜。
type ErrorBox struct {
	p atomic.Pointer[TaskError]
}

// Record 尝试写入错误，返回是否写入成功。nil 被忽略。
func (b *ErrorBox) Record(err *TaskError) bool {
	if err == nil {
		return false
	}
	return b.p.CompareAndSwap(nil, err)
}

// Load 返回记录的错误，没有时返回 nil。
func (b *ErrorBox) Load() *TaskError {
	return b.p.Load()
}

// Err 以 error 接口返回记录的错误，没有时返回 nil 接口值。
func (b *ErrorBox) Err() error {
	if te := b.p.Load(); te != nil {
		return te
	}
	return nil
}

// Failed 报告是否已记录错误。
func (b *ErrorBox) Failed() bool {
	return b.p.Load() != nil
}
