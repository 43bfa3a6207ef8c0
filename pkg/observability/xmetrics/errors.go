package xmetrics

import "errors"

var (
	// ErrCreateInstrument 表示创建 OTel 指标仪表失败。
	ErrCreateInstrument = errors.New("xmetrics: create instrument failed")
	// ErrNilSource 表示 RegisterPoolGauges 的数据源为 nil。
	ErrNilSource = errors.New("xmetrics: nil pool stats source")
)
