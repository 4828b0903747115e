// Package ipc is the glue between the typed-program engine and an external
// execution environment (e.g. a QEMU-based kernel harness). It is
// deliberately thin: everything about scheduling, feedback, or corpus
// management lives outside the engine per the description's external
// interface boundary; this package only defines the handoff shape and a
// subprocess-based executor a small standalone driver can use.
package ipc

import (
	"context"
	"time"

	"github.com/nine-point-eight-p/flicker/prog"
)

// ExecKind classifies how an execution ended. The engine never interprets
// anything past this: evaluating kernel side effects belongs to the
// (external) coverage-guided fuzzing loop, not to this package.
type ExecKind int

const (
	ExecOK ExecKind = iota
	ExecCrash
	ExecTimeout
)

// ExecResult is what an Executor reports back for one program.
type ExecResult struct {
	Kind     ExecKind
	Cover    []uint32 // edge identifiers observed, if coverage is enabled
	Output   []byte   // captured stdout/stderr, present on Crash
	Duration time.Duration
}

// Executor runs one serialized program against a target and reports what
// happened. Implementations decide how the bytes actually reach the target
// (shared memory, a pipe, a socket) and how coverage is recovered.
type Executor interface {
	Run(ctx context.Context, p *prog.Prog) (ExecResult, error)
}
