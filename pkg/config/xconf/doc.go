// Package xconf 加载 xtask 的配置文档（YAML 或 JSON），基于 koanf。
//
// 文档包含三段：log（日志）、dispatch（分发默认值）、pools（pool 配置表）。
// [Config.Settings] 把文档映射为 [Settings] 并完成校验；
// [Settings.Catalog] 构建 xexec.Catalog，[LogSettings.Builder] 构建 xlog.Builder。
//
// # 热重载
//
// [Watch] 基于 fsnotify 监视配置文件所在目录，防抖后重载并把新的 Settings 交给回调。
// 重载或校验失败时回调收到错误，之前的配置保持不变。
// 只能监视从文件创建的 Config。
//
// 已创建的 pool 不受重载影响：新配置只作用于之后首次访问的 key。
package xconf
