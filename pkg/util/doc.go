// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xerrcode: 错误分类码，跨包统一的错误归类与提取
//   - xpool: 泛型 Worker Pool，可配置核心/最大 worker、队列容量、饱和策略与空闲回收
//
// 设计原则：
//   - 零全局状态，实例之间互不影响
//   - 关闭过程可由 context 控制超时
package util
