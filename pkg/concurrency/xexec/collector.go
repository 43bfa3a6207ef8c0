package xexec

import (
	"maps"
	"slices"
)

// Collector 是调用方提供的结果累加器。
//
// Collect 在提交前调用一次 Init，按提交顺序对每个成功结果调用 Fill，
// 最后调用 Get。三个方法都在调用方 goroutine 上执行，无需并发安全。
type Collector[T, R any] interface {
	Init()
	Fill(v T)
	Get() R
}

// SliceCollector 按顺序收集结果。
type SliceCollector[T any] struct {
	items []T
}

// Init 清空已收集的结果。
func (c *SliceCollector[T]) Init() { c.items = nil }

// Fill 追加一个结果。
func (c *SliceCollector[T]) Fill(v T) { c.items = append(c.items, v) }

// Get 返回结果的拷贝。
func (c *SliceCollector[T]) Get() []T { return slices.Clone(c.items) }

// MapCollector 合并每个任务返回的 map，后来者覆盖同名 key。
type MapCollector[K comparable, V any] struct {
	m map[K]V
}

// Init 重置结果。
func (c *MapCollector[K, V]) Init() { c.m = make(map[K]V) }

// Fill 合并一个 map。
func (c *MapCollector[K, V]) Fill(v map[K]V) {
	if c.m == nil {
		c.m = make(map[K]V, len(v))
	}
	maps.Copy(c.m, v)
}

// Get 返回合并结果的拷贝。
func (c *MapCollector[K, V]) Get() map[K]V { return maps.Clone(c.m) }

// CountCollector 统计成功结果的数量。
type CountCollector[T any] struct {
	n int
}

func (c *CountCollector[T]) Init()  { c.n = 0 }
func (c *CountCollector[T]) Fill(T) { c.n++ }
func (c *CountCollector[T]) Get() int {
	return c.n
}

// FuncCollector 用折叠函数累加结果。
type FuncCollector[T, R any] struct {
	init func() R
	fold func(R, T) R
	acc  R
}

// NewFuncCollector 创建 FuncCollector。init 为 nil 时从零值开始。
func NewFuncCollector[T, R any](init func() R, fold func(acc R, v T) R) *FuncCollector[T, R] {
	return &FuncCollector[T, R]{init: init, fold: fold}
}

// Init 重置累加值。
func (c *FuncCollector[T, R]) Init() {
	var zero R
	c.acc = zero
	if c.init != nil {
		c.acc = c.init()
	}
}

// Fill 折叠一个结果。
func (c *FuncCollector[T, R]) Fill(v T) {
	if c.fold != nil {
		c.acc = c.fold(c.acc, v)
	}
}

// Get 返回累加值。
func (c *FuncCollector[T, R]) Get() R { return c.acc }
