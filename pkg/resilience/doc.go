// Package resilience 提供弹性相关的子包。
//
// 子包列表：
//   - xretry: 基于 retry-go 的重试封装与可配置重试策略
package resilience
