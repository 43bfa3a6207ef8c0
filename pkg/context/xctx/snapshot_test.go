package xctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phray/xtask/pkg/context/xctx"
)

func TestWithField_CopyOnWrite(t *testing.T) {
	base, err := xctx.WithField(context.Background(), "tenant", "t1")
	require.NoError(t, err)

	child, err := xctx.WithField(base, "user", "u1")
	require.NoError(t, err)

	_, ok := xctx.Field(base, "user")
	assert.False(t, ok, "派生 context 不应影响父 context")

	v, ok := xctx.Field(child, "tenant")
	assert.True(t, ok)
	assert.Equal(t, "t1", v)

	_, err = xctx.WithField(base, "", "x")
	assert.ErrorIs(t, err, xctx.ErrEmptyFieldKey)
}

func TestWithFields_SkipsEmptyKey(t *testing.T) {
	ctx, err := xctx.WithFields(context.Background(), map[string]string{"a": "1", "": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, xctx.Fields(ctx))

	same, err := xctx.WithFields(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ctx, same)
}

func TestFields_ReturnsCopy(t *testing.T) {
	ctx, _ := xctx.WithField(context.Background(), "k", "v")
	m := xctx.Fields(ctx)
	m["k"] = "changed"

	v, _ := xctx.Field(ctx, "k")
	assert.Equal(t, "v", v)
}

func TestCapture_Empty(t *testing.T) {
	assert.True(t, xctx.Capture(context.Background()).IsEmpty())
	//nolint:staticcheck // 测试 nil context 处理
	assert.True(t, xctx.Capture(nil).IsEmpty())
}

func TestCapture_IsolatedFromLaterWrites(t *testing.T) {
	ctx, _ := xctx.WithTraceID(context.Background(), "trace-a")
	ctx, _ = xctx.WithField(ctx, "biz", "order")

	snap := xctx.Capture(ctx)

	// 捕获之后的修改不影响快照
	_, _ = xctx.WithField(ctx, "biz", "refund")
	_, _ = xctx.WithField(ctx, "extra", "1")

	assert.Equal(t, "trace-a", snap.TraceID())
	v, ok := snap.Field("biz")
	assert.True(t, ok)
	assert.Equal(t, "order", v)
	_, ok = snap.Field("extra")
	assert.False(t, ok)
}

func TestInstall_RestoresAndReleases(t *testing.T) {
	src, _ := xctx.WithTraceID(context.Background(), "trace-b")
	src, _ = xctx.WithSpanID(src, "span-b")
	src, _ = xctx.WithRequestID(src, "req-b")
	src, _ = xctx.WithTraceFlags(src, "01")
	src, _ = xctx.WithField(src, "tenant", "t9")

	snap := xctx.Capture(src)
	ctx, release := snap.Install(context.Background())

	assert.Equal(t, "trace-b", xctx.TraceID(ctx))
	assert.Equal(t, "span-b", xctx.SpanID(ctx))
	assert.Equal(t, "req-b", xctx.RequestID(ctx))
	assert.Equal(t, "01", xctx.TraceFlags(ctx))
	assert.True(t, snap.Equal(xctx.Capture(ctx)))
	require.NoError(t, ctx.Err())

	release()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	release() // 幂等
}

func TestInstall_NilParent(t *testing.T) {
	var snap xctx.Snapshot
	//nolint:staticcheck // 测试 nil parent
	ctx, release := snap.Install(nil)
	defer release()
	require.NotNil(t, ctx)
	assert.True(t, xctx.Capture(ctx).IsEmpty())
}

func TestInstall_DoesNotLeakBack(t *testing.T) {
	src, _ := xctx.WithField(context.Background(), "k", "v")
	snap := xctx.Capture(src)

	ctx, release := snap.Install(context.Background())
	defer release()
	_, _ = xctx.WithField(ctx, "k", "mutated")

	v, _ := snap.Field("k")
	assert.Equal(t, "v", v)
	assert.Equal(t, map[string]string{"k": "v"}, snap.Fields())
}
