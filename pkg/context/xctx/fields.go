package xctx

import (
	"context"
	"maps"
	"sort"
)

const keyFields = contextKey("xctx:fields")

// WithField 写入一个自由字段。
//
// 底层 map 写时复制：返回的 context 持有新 map，已派生的 context 与快照不受影响。
func WithField(ctx context.Context, key, value string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if key == "" {
		return nil, ErrEmptyFieldKey
	}
	old := fieldMap(ctx)
	next := make(map[string]string, len(old)+1)
	maps.Copy(next, old)
	next[key] = value
	return context.WithValue(ctx, keyFields, next), nil
}

// WithFields 批量写入自由字段，空 key 被忽略。
func WithFields(ctx context.Context, kv map[string]string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if len(kv) == 0 {
		return ctx, nil
	}
	old := fieldMap(ctx)
	next := make(map[string]string, len(old)+len(kv))
	maps.Copy(next, old)
	for k, v := range kv {
		if k != "" {
			next[k] = v
		}
	}
	return context.WithValue(ctx, keyFields, next), nil
}

// Field 读取一个自由字段。
func Field(ctx context.Context, key string) (string, bool) {
	v, ok := fieldMap(ctx)[key]
	return v, ok
}

// Fields 返回自由字段的拷贝，没有字段时返回 nil。
func Fields(ctx context.Context) map[string]string {
	m := fieldMap(ctx)
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// fieldMap 返回 context 中的只读 map，调用方不得修改。
func fieldMap(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(keyFields).(map[string]string)
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
