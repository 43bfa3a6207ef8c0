// Package lifecycle 提供进程生命周期管理相关的子包。
//
// 子包列表：
//   - xrun: 基于 errgroup 的服务组，统一信号处理与优雅关闭
package lifecycle
