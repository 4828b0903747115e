package ipc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nine-point-eight-p/flicker/prog"
)

// SubprocessExecutor runs a QEMU-style harness binary once per program,
// feeding it the wire-encoded bytes on stdin and reading back a shared
// coverage region mapped from CoverPath. It is the minimal real executor a
// standalone driver needs; a production launcher would instead keep a
// warm VM/snapshot around and would not be in scope here.
type SubprocessExecutor struct {
	// Path to the harness binary.
	Path string
	Args []string
	// Timeout bounds a single execution.
	Timeout time.Duration
	// CoverPath, if set, is mmap'd after each run and interpreted as a
	// packed []uint32 of edge identifiers, the first entry being a count.
	CoverPath string
	// MemLimitBytes caps the harness's address space (RLIMIT_AS), guarding
	// against a generated program driving the harness to exhaust memory.
	MemLimitBytes uint64
	// Neutralizer, if set, runs over every call before it is wire-encoded.
	// A nil Neutralizer sends calls through unchanged.
	Neutralizer prog.Neutralizer
}

func (e *SubprocessExecutor) Run(ctx context.Context, p *prog.Prog) (ExecResult, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p = e.neutralize(p)

	cmd := exec.CommandContext(runCtx, e.Path, e.Args...)
	cmd.Stdin = bytes.NewReader(p.ToExecBytes())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return ExecResult{}, fmt.Errorf("ipc: start harness: %w", err)
	}
	if e.MemLimitBytes > 0 {
		_ = applyRlimitAS(cmd.Process.Pid, e.MemLimitBytes)
	}

	err = cmd.Wait()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		killProcessGroup(cmd.Process.Pid)
		return ExecResult{Kind: ExecTimeout, Output: out.Bytes(), Duration: duration}, nil
	}
	if err != nil {
		return ExecResult{Kind: ExecCrash, Output: out.Bytes(), Duration: duration}, nil
	}

	cover, cerr := e.readCoverage()
	if cerr != nil {
		return ExecResult{Kind: ExecOK, Output: out.Bytes(), Duration: duration}, nil
	}
	return ExecResult{Kind: ExecOK, Cover: cover, Output: out.Bytes(), Duration: duration}, nil
}

// neutralize returns p unchanged if e.Neutralizer is nil, otherwise a clone
// with every call passed through the neutralizer first.
func (e *SubprocessExecutor) neutralize(p *prog.Prog) *prog.Prog {
	if e.Neutralizer == nil {
		return p
	}
	out := p.Clone()
	for i, c := range out.Calls {
		out.Calls[i] = e.Neutralizer.Neutralize(c)
	}
	return out
}

func applyRlimitAS(pid int, bytesLimit uint64) error {
	rlimit := unix.Rlimit{Cur: bytesLimit, Max: bytesLimit}
	return unix.Prlimit(pid, unix.RLIMIT_AS, &rlimit, nil)
}

func killProcessGroup(pid int) {
	_ = unix.Kill(-pid, unix.SIGKILL)
}

func (e *SubprocessExecutor) readCoverage() ([]uint32, error) {
	if e.CoverPath == "" {
		return nil, nil
	}
	f, err := os.Open(e.CoverPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(data)

	if len(data) < 4 {
		return nil, nil
	}
	count := le32(data[:4])
	out := make([]uint32, 0, count)
	for i := uint32(0); i < count && 4+4*(i+1) <= uint32(len(data)); i++ {
		out = append(out, le32(data[4+4*i:8+4*i]))
	}
	return out, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
