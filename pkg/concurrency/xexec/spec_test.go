package xexec

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phray/xtask/pkg/util/xerrcode"
	"github.com/phray/xtask/pkg/util/xpool"
)

func TestPoolSpec_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*PoolSpec)
		field string
	}{
		{"common", func(*PoolSpec) {}, ""},
		{"sync handoff", func(s *PoolSpec) { s.QueueCapacity = 0 }, ""},
		{"empty key", func(s *PoolSpec) { s.Key = "" }, "key"},
		{"zero core", func(s *PoolSpec) { s.CoreSize = 0 }, "core_size"},
		{"max below core", func(s *PoolSpec) { s.MaxSize = 2 }, "max_size"},
		{"negative queue", func(s *PoolSpec) { s.QueueCapacity = -1 }, "queue_capacity"},
		{"negative keep-alive", func(s *PoolSpec) { s.KeepAlive = -time.Second }, "keep_alive"},
		{"bad policy", func(s *PoolSpec) { s.Policy = xpool.Policy(9) }, "policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Common
			tt.mut(&s)
			err := s.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, xerrcode.IllegalArgument, xerrcode.CodeOf(err))
		})
	}
}

func TestCommon(t *testing.T) {
	assert.Equal(t, "COMMON", Common.Key)
	assert.Equal(t, 4, Common.CoreSize)
	assert.Equal(t, 8, Common.MaxSize)
	assert.Equal(t, 512, Common.QueueCapacity)
	assert.Equal(t, 60*time.Second, Common.KeepAlive)
	assert.Equal(t, xpool.CallerRuns, Common.Policy)
	assert.NoError(t, Common.Validate())
}

func TestCatalog(t *testing.T) {
	io := PoolSpec{Key: "IO", Desc: "io", CoreSize: 2, MaxSize: 4, QueueCapacity: 16, Policy: xpool.Abort}
	c, err := NewCatalog(Common, io)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"COMMON", "IO"}, c.Keys())

	got, ok := c.Lookup("IO")
	require.True(t, ok)
	assert.Equal(t, io, got)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	bad := io
	bad.CoreSize = 0
	assert.Error(t, c.Register(bad))
	assert.Error(t, c.Replace([]PoolSpec{Common, bad}))
	assert.Equal(t, 2, c.Len(), "failed replace must not modify catalog")

	require.NoError(t, c.Replace([]PoolSpec{io}))
	assert.Equal(t, []PoolSpec{io}, c.Specs())

	_, err = NewCatalog(bad)
	assert.Error(t, err)
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	got, ok := c.Lookup(Common.Key)
	require.True(t, ok)
	assert.Equal(t, Common, got)
}

func FuzzPoolSpecValidate(f *testing.F) {
	f.Add("COMMON", 4, 8, 512, int64(time.Minute), 0)
	f.Add("", 0, 0, -1, int64(-1), 7)
	f.Fuzz(func(t *testing.T, key string, core, maxSize, queue int, keepAlive int64, policy int) {
		s := PoolSpec{
			Key:           key,
			CoreSize:      core,
			MaxSize:       maxSize,
			QueueCapacity: queue,
			KeepAlive:     time.Duration(keepAlive),
			Policy:        xpool.Policy(policy),
		}
		err := s.Validate()
		if err != nil {
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() error = %T, want *ConfigError", err)
			}
			return
		}
		if s.Key == "" || s.CoreSize < 1 || s.MaxSize < s.CoreSize || s.QueueCapacity < 0 || s.KeepAlive < 0 {
			t.Fatalf("Validate() accepted invalid spec %+v", s)
		}
	})
}
