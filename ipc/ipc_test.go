package ipc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nine-point-eight-p/flicker/prog"
)

// TestMain re-execs the test binary as a trivial harness when invoked with
// FLICKER_HELPER_PROCESS set, the same "helper subprocess" pattern the Go
// standard library itself uses (see os/exec's own tests) to exercise
// exec.CommandContext without depending on an external binary.
func TestMain(m *testing.M) {
	if os.Getenv("FLICKER_HELPER_PROCESS") == "1" {
		runHelper()
		return
	}
	os.Exit(m.Run())
}

func runHelper() {
	switch os.Getenv("FLICKER_HELPER_MODE") {
	case "hang":
		time.Sleep(10 * time.Second)
	case "fail":
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func helperCommand(mode string) (string, []string) {
	return os.Args[0], []string{"-test.run=TestMain"}
}

func testProg() *prog.Prog {
	return &prog.Prog{
		Metadata: prog.NewMetadata([]*prog.Syscall{{Nr: 0, Name: "noop"}}),
		Calls:    []*prog.Call{{Nr: 0}},
	}
}

func newHelperExecutor(t *testing.T, mode string, timeout time.Duration) *SubprocessExecutor {
	t.Helper()
	path, args := helperCommand(mode)
	return &SubprocessExecutor{
		Path:    path,
		Args:    args,
		Timeout: timeout,
	}
}

func runWithEnv(e *SubprocessExecutor, mode string) (ExecResult, error) {
	prevProc := os.Getenv("FLICKER_HELPER_PROCESS")
	prevMode := os.Getenv("FLICKER_HELPER_MODE")
	os.Setenv("FLICKER_HELPER_PROCESS", "1")
	os.Setenv("FLICKER_HELPER_MODE", mode)
	defer func() {
		os.Setenv("FLICKER_HELPER_PROCESS", prevProc)
		os.Setenv("FLICKER_HELPER_MODE", prevMode)
	}()
	return e.Run(context.Background(), testProg())
}

func TestSubprocessExecutorOK(t *testing.T) {
	if _, err := os.Stat(os.Args[0]); err != nil {
		t.Skip("test binary not available for re-exec")
	}
	e := newHelperExecutor(t, "ok", 2*time.Second)
	res, err := runWithEnv(e, "ok")
	require.NoError(t, err)
	require.Equal(t, ExecOK, res.Kind)
}

func TestSubprocessExecutorCrash(t *testing.T) {
	if _, err := os.Stat(os.Args[0]); err != nil {
		t.Skip("test binary not available for re-exec")
	}
	e := newHelperExecutor(t, "fail", 2*time.Second)
	res, err := runWithEnv(e, "fail")
	require.NoError(t, err)
	require.Equal(t, ExecCrash, res.Kind)
}

func TestSubprocessExecutorTimeout(t *testing.T) {
	if _, err := os.Stat(os.Args[0]); err != nil {
		t.Skip("test binary not available for re-exec")
	}
	e := newHelperExecutor(t, "hang", 100*time.Millisecond)
	res, err := runWithEnv(e, "hang")
	require.NoError(t, err)
	require.Equal(t, ExecTimeout, res.Kind)
}
