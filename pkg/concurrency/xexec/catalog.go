package xexec

import (
	"maps"
	"slices"
	"sync"
)

// Catalog 是并发安全的具名 PoolSpec 集合。
//
// Catalog 的变更不影响已经创建的 pool。
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]PoolSpec
}

// NewCatalog 用给定配置创建 Catalog。重复的 key 以后者为准。
func NewCatalog(specs ...PoolSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]PoolSpec, len(specs))}
	if err := c.Replace(specs); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog 返回只含 Common 的 Catalog。
func DefaultCatalog() *Catalog {
	return &Catalog{specs: map[string]PoolSpec{Common.Key: Common}}
}

// Register 校验并加入一个配置，已存在的同名配置被覆盖。
func (c *Catalog) Register(spec PoolSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.specs[spec.Key] = spec
	c.mu.Unlock()
	return nil
}

// Lookup 按 key 查找配置。
func (c *Catalog) Lookup(key string) (PoolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[key]
	return s, ok
}

// Keys 返回排序后的全部 key。
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.specs))
}

// Specs 返回按 key 排序的全部配置。
func (c *Catalog) Specs() []PoolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PoolSpec, 0, len(c.specs))
	for _, k := range slices.Sorted(maps.Keys(c.specs)) {
		out = append(out, c.specs[k])
	}
	return out
}

// Replace 整体替换配置集合。任一配置非法时不做任何修改。
func (c *Catalog) Replace(specs []PoolSpec) error {
	next := make(map[string]PoolSpec, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		next[s.Key] = s
	}
	c.mu.Lock()
	c.specs = next
	c.mu.Unlock()
	return nil
}

// Len 返回配置数量。
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.specs)
}
