package xexec

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phray/xtask/pkg/observability/xlog"
)

func discardLogger(t *testing.T) xlog.Logger {
	t.Helper()
	l, cleanup, err := xlog.New().SetOutput(io.Discard).SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return l
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry(
		WithRegistryLogger(discardLogger(t)),
		WithPoolLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	t.Cleanup(func() { require.NoError(t, reg.Shutdown(context.Background())) })
	return reg
}

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	all := append([]Option{WithLogger(discardLogger(t))}, opts...)
	d, err := New(newTestRegistry(t), all...)
	require.NoError(t, err)
	return d
}

func specFor(key string) PoolSpec {
	s := Common
	s.Key = key
	return s
}
