package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phray/xtask/pkg/concurrency/xexec"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"xtaskctl"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xtask.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const testConfig = `
log:
  level: error
pools:
  - key: IO
    desc: io
    core_size: 2
    max_size: 4
    queue_capacity: 8
    keep_alive: 1s
    policy: abort
  - key: CPU
    core_size: 1
    max_size: 1
    queue_capacity: 1000
`

func TestPools_Default(t *testing.T) {
	code, out, _ := runCLI(t, "pools")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "COMMON")
	assert.Contains(t, out, "caller_runs")
}

func TestPools_FromConfig(t *testing.T) {
	code, out, _ := runCLI(t, "-c", writeConfig(t, testConfig), "pools")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "IO")
	assert.Contains(t, out, "abort")
	assert.NotContains(t, out, "COMMON")
}

func TestValidate(t *testing.T) {
	code, out, _ := runCLI(t, "-c", writeConfig(t, testConfig), "validate")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "ok: 2 pool(s)")

	code, _, errOut := runCLI(t, "validate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "--config")

	code, _, _ = runCLI(t, "-c", writeConfig(t, "pools: [{key: X, core_size: 0}]"), "validate")
	assert.Equal(t, exitFailure, code)
}

func TestRun_Batch(t *testing.T) {
	code, out, errOut := runCLI(t, "--log-level", "error", "run", "--tasks", "20", "--work", "0s")
	assert.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "batch: 20 task(s) on COMMON")
	assert.Contains(t, out, "COMMON")
	assert.Contains(t, out, "xexec.batch")
	assert.Contains(t, out, "xexec.task")
}

func TestRun_BatchFailure(t *testing.T) {
	code, _, errOut := runCLI(t, "--log-level", "error", "run", "--tasks", "10", "--work", "0s", "--fail-every", "5")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "synthetic failure")
}

func TestRun_Collect(t *testing.T) {
	code, out, errOut := runCLI(t, "-c", writeConfig(t, testConfig),
		"run", "--pool", "CPU", "--mode", "collect", "--tasks", "5", "--work", "1ms", "--timeout", "5s")
	assert.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "collect: 5 task(s) on CPU")
	assert.Contains(t, out, "result=5")
}

func TestRun_CollectTimeout(t *testing.T) {
	code, _, _ := runCLI(t, "--log-level", "error",
		"run", "--mode", "collect", "--tasks", "1", "--work", "200ms", "--timeout", "10ms")
	assert.Equal(t, exitTimeout, code)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown pool", []string{"run", "--pool", "NOPE"}},
		{"zero tasks", []string{"run", "--tasks", "0"}},
		{"bad mode", []string{"run", "--mode", "stream"}},
		{"negative fail-every", []string{"run", "--fail-every=-1"}},
		{"serve zero interval", []string{"serve", "--interval", "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, "参数错误")
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	path := writeConfig(t, testConfig)
	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"xtaskctl", "-c", path, "--log-level", "error",
			"serve", "--pool", "IO", "--tasks", "4", "--work", "0s", "--interval", "5ms"}, &stdout, &stderr)
	}()
	cancel()
	assert.Equal(t, exitOK, <-done, stderr.String())
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, exitOK, exitCode(nil, &buf))
	assert.Equal(t, exitUsage, exitCode(usageErrorf("x"), &buf))
	assert.Equal(t, exitUsage, exitCode(errors.New("flag provided but not defined: -x"), &buf))
	assert.Equal(t, exitTimeout, exitCode(&xexec.TimeoutError{Desc: "d"}, &buf))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom"), &buf))
}
