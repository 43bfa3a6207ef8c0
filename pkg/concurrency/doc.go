// Package concurrency 提供任务编排相关的子包。
//
// 子包列表：
//   - xexec: 具名 worker pool 注册表、任务信封、批次屏障与结果收集
package concurrency
