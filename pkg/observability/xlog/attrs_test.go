package xlog_test

import (
	"errors"
	"testing"
	"time"

	"github.com/phray/xtask/pkg/observability/xlog"
)

func TestAttrs(t *testing.T) {
	if a := xlog.Err(nil); a.Key != "" {
		t.Errorf("Err(nil) = %v", a)
	}
	if a := xlog.Err(errors.New("x")); a.Key != xlog.KeyError || a.Value.String() != "x" {
		t.Errorf("Err() = %v", a)
	}
	if a := xlog.Duration(1500 * time.Millisecond); a.Value.String() != "1.5s" {
		t.Errorf("Duration() = %v", a)
	}
	if a := xlog.Count(3); a.Value.Int64() != 3 {
		t.Errorf("Count() = %v", a)
	}

	checks := map[string]string{
		xlog.Pool("COMMON").Key:  xlog.KeyPool,
		xlog.Batch("b").Key:      xlog.KeyBatch,
		xlog.Task("t").Key:       xlog.KeyTask,
		xlog.Code("098").Key:     xlog.KeyCode,
		xlog.Component("c").Key:  xlog.KeyComponent,
		xlog.Operation("op").Key: xlog.KeyOperation,
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("key = %q, want %q", got, want)
		}
	}
}
