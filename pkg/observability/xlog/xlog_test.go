package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phray/xtask/pkg/observability/xlog"
)

func testCleanup(t *testing.T, cleanup func() error) {
	t.Helper()
	t.Cleanup(func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup error: %v", err)
		}
	})
}

func build(t *testing.T, b *xlog.Builder) xlog.LoggerWithLevel {
	t.Helper()
	logger, cleanup, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)
	return logger
}

func TestLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug))

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\noutput: %s", want, output)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelWarn))

	logger.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered, got %s", buf.String())
	}

	logger.SetLevel(xlog.LevelDebug)
	logger.Debug(context.Background(), "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug should pass after SetLevel, got %s", buf.String())
	}
	if logger.GetLevel() != xlog.LevelDebug {
		t.Errorf("GetLevel() = %v", logger.GetLevel())
	}
}

func TestLogger_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelError))

	child := logger.With(xlog.Pool("COMMON"))
	logger.SetLevel(xlog.LevelInfo)
	child.Info(context.Background(), "child")

	out := buf.String()
	if !strings.Contains(out, "pool=COMMON") {
		t.Errorf("output missing pool attr: %s", out)
	}
	if logger.With() != xlog.Logger(logger) {
		t.Error("With() without attrs should return the same logger")
	}
}

func TestLogger_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetFormat("json"))

	logger.WithGroup("batch").Info(context.Background(), "grouped", slog.Int("size", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	group, ok := rec["batch"].(map[string]any)
	if !ok || group["size"] != float64(3) {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestLogger_Stack(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf))

	logger.Stack(context.Background(), "with stack")
	out := buf.String()
	if !strings.Contains(out, "stack=") || !strings.Contains(out, "goroutine") {
		t.Errorf("stack missing: %s", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_OnError(t *testing.T) {
	var got error
	logger := build(t, xlog.New().SetOutput(failingWriter{}).SetOnError(func(err error) { got = err }))

	logger.Info(context.Background(), "lost")
	if got == nil {
		t.Error("OnError not called")
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *xlog.Builder
	}{
		{"bad level", xlog.New().SetLevelString("verbose")},
		{"bad format", xlog.New().SetFormat("xml")},
		{"empty rotation", xlog.New().SetRotation(" ", xlog.Rotation{})},
		{"negative rotation", xlog.New().SetRotation("a.log", xlog.Rotation{MaxBackups: -1})},
		{"first error wins", xlog.New().SetFormat("xml").SetLevelString("debug")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.b.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuilder_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xtask.log")
	logger, cleanup, err := xlog.New().
		SetRotation(path, xlog.Rotation{MaxSizeMB: 1, MaxBackups: 1}).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	logger.Info(context.Background(), "to file")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
}
