package xlog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/phray/xtask/pkg/observability/xlog"
)

func TestGlobal(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)

	if xlog.Default() == nil {
		t.Fatal("Default() returned nil")
	}

	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug).Build()
	if err != nil {
		t.Fatal(err)
	}
	testCleanup(t, cleanup)

	xlog.SetDefault(logger)
	xlog.SetDefault(nil) // 忽略

	ctx := context.Background()
	xlog.Debug(ctx, "g-debug")
	xlog.Info(ctx, "g-info")
	xlog.Warn(ctx, "g-warn")
	xlog.Error(ctx, "g-error")

	for _, want := range []string{"g-debug", "g-info", "g-warn", "g-error"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q", want)
		}
	}
}
