// Package context 提供环境上下文相关的子包。
//
// 子包列表：
//   - xctx: 追踪信息与自由字段的注入/提取，以及跨 goroutine 的快照捕获与安装
//
// 设计原则：
//   - 所有上下文信息通过 context.Context 传递，不使用全局变量
//   - 快照不可变，提交方与执行方之间没有共享的可变状态
//   - 支持 W3C Trace Context 标准
package context
