package xconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phray/xtask/pkg/concurrency/xexec"
	"github.com/phray/xtask/pkg/util/xpool"
)

const sampleYAML = `
log:
  level: debug
  format: json
dispatch:
  default_timeout: 5s
pools:
  - key: COMMON
    desc: 通用
    core_size: 4
    max_size: 8
    queue_capacity: 512
    keep_alive: 60s
    policy: caller_runs
  - key: IO
    core_size: 2
    max_size: 16
    queue_capacity: 0
    policy: abort
`

const sampleJSON = `{
  "dispatch": {"default_timeout": "2s"},
  "pools": [{"key": "CPU", "core_size": 2, "max_size": 2, "queue_capacity": 64, "policy": "discard-oldest"}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadBytes_YAML(t *testing.T) {
	s, err := LoadBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)

	timeout, err := s.DefaultTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	specs, err := s.PoolSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, xexec.Common, specs[0])
	assert.Equal(t, xexec.PoolSpec{Key: "IO", CoreSize: 2, MaxSize: 16, Policy: xpool.Abort}, specs[1])
}

func TestLoadBytes_JSON(t *testing.T) {
	s, err := LoadBytes([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	cat, err := s.Catalog()
	require.NoError(t, err)
	spec, ok := cat.Lookup("CPU")
	require.True(t, ok)
	assert.Equal(t, xpool.DiscardOldest, spec.Policy)
	_, ok = cat.Lookup(xexec.Common.Key)
	assert.False(t, ok)
}

func TestLoadBytes_Defaults(t *testing.T) {
	s, err := LoadBytes(nil, FormatYAML)
	require.NoError(t, err)

	timeout, err := s.DefaultTimeout()
	require.NoError(t, err)
	assert.Equal(t, xexec.DefaultCollectTimeout, timeout)

	cat, err := s.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{xexec.Common.Key}, cat.Keys())
}

func TestLoadBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"bad yaml", "pools: [", ErrParseFailed},
		{"bad level", "log: {level: loud}", ErrInvalidValue},
		{"bad format", "log: {format: xml}", ErrInvalidValue},
		{"bad timeout", "dispatch: {default_timeout: soon}", ErrInvalidValue},
		{"negative timeout", "dispatch: {default_timeout: -1s}", ErrInvalidValue},
		{"bad keep-alive", "pools: [{key: A, core_size: 1, max_size: 1, keep_alive: forever}]", ErrInvalidValue},
		{"bad policy", "pools: [{key: A, core_size: 1, max_size: 1, policy: panic}]", xpool.ErrInvalidPolicy},
		{"max below core", "pools: [{key: A, core_size: 4, max_size: 1}]", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.doc), FormatYAML)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := LoadBytes([]byte("pools: [{key: A, core_size: 4, max_size: 1}]"), FormatYAML)
	var ce *xexec.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "max_size", ce.Field)
}

func TestFormat(t *testing.T) {
	for in, want := range map[string]Format{"a.yaml": FormatYAML, "a.YML": FormatYAML, "a.json": FormatJSON} {
		got, err := FormatOf(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := FormatOf("a.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = FormatOf("noext")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewFromBytes(nil, Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNew_File(t *testing.T) {
	path := writeFile(t, "xtask.yaml", sampleYAML)
	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, "debug", cfg.Client().String("log.level"))

	var pools []PoolSettings
	require.NoError(t, cfg.Unmarshal("pools", &pools))
	assert.Len(t, pools, 2)

	require.NoError(t, os.WriteFile(path, []byte("log: {level: warn}"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, "warn", cfg.Client().String("log.level"))

	require.NoError(t, os.WriteFile(path, []byte("log: ["), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, "warn", cfg.Client().String("log.level"), "failed reload keeps previous content")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	cfg, err := NewFromBytes([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Reload(), ErrNotWatchable)
}

func TestLoad(t *testing.T) {
	s, err := Load(writeFile(t, "xtask.json", sampleJSON))
	require.NoError(t, err)
	require.Len(t, s.Pools, 1)
	assert.Equal(t, "CPU", s.Pools[0].Key)
}

func TestLogSettings_Builder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xtask.log")
	logger, cleanup, err := LogSettings{Level: "warn", Format: "json", File: file, MaxSizeMB: 1}.Builder().Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	assert.NotNil(t, logger)

	_, _, err = LogSettings{Format: "xml"}.Builder().Build()
	assert.Error(t, err)
}

func FuzzLoadBytes(f *testing.F) {
	f.Add([]byte(sampleYAML))
	f.Add([]byte("pools: [{key: X}]"))
	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := LoadBytes(data, FormatYAML)
		if err != nil {
			return
		}
		if _, err := s.Catalog(); err != nil {
			t.Fatalf("validated settings produced invalid catalog: %v", err)
		}
	})
}
