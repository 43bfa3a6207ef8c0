package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyStack     = "stack"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyPool      = "pool"
	KeyBatch     = "batch_id"
	KeyTask      = "task"
	KeyCode      = "code"
)

// Err 创建错误属性，err 为 nil 时返回空属性（被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出人类可读格式（如 "1.5s"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Pool 创建 pool key 属性
func Pool(key string) slog.Attr {
	return slog.String(KeyPool, key)
}

// Batch 创建批次 ID 属性
func Batch(id string) slog.Attr {
	return slog.String(KeyBatch, id)
}

// Task 创建任务描述属性
func Task(desc string) slog.Attr {
	return slog.String(KeyTask, desc)
}

// Code 创建错误码属性
func Code(code string) slog.Attr {
	return slog.String(KeyCode, code)
}
