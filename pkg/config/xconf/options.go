package xconf

// options 是加载选项。
type options struct {
	delim string
	tag   string
}

// Option 配置加载行为。
type Option func(*options)

func defaultOptions() options {
	return options{delim: ".", tag: "koanf"}
}

// WithDelim 设置 key 路径分隔符，默认 "."，空值被忽略。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 使用的结构体标签，默认 "koanf"，空值被忽略。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}
