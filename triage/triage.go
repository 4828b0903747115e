// Package triage turns a raw crash into something a human can act on: a
// demangled backtrace, a readable diff against the last known-good program,
// and, if configured, a one-line natural-language summary.
package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nine-point-eight-p/flicker/prog"
)

// Report is the result of triaging one crash.
type Report struct {
	Demangled []string
	ProgDiff  string
	Summary   string
}

// DemangleBacktrace demangles every C++-mangled symbol in a raw backtrace,
// leaving already-plain symbols (most kernel C symbols) untouched.
func DemangleBacktrace(frames []string) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		name, rest := splitSymbol(f)
		if d, err := demangle.ToString(name, demangle.NoClones); err == nil {
			out[i] = d + rest
		} else {
			out[i] = f
		}
	}
	return out
}

// splitSymbol separates a leading mangled symbol from trailing offset/location
// text a backtrace line often carries (e.g. "_ZN3fooEv+0x10").
func splitSymbol(frame string) (name, rest string) {
	if idx := strings.IndexAny(frame, " \t+("); idx >= 0 {
		return frame[:idx], frame[idx:]
	}
	return frame, ""
}

// DiffPrograms renders a human-readable diff between a crashing program and
// the last program known not to crash, each rendered as one summary line per
// call (index, syscall number, argument count).
func DiffPrograms(before, after *prog.Prog) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(progText(before), progText(after), false)
	return dmp.DiffPrettyText(diffs)
}

func progText(p *prog.Prog) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, c := range p.Calls {
		fmt.Fprintf(&b, "call %d: nr=%d args=%d\n", i, c.Nr, len(c.Args))
	}
	return b.String()
}

// Summarizer produces a one-line natural-language summary of a crash. A
// generative-ai-go-backed implementation lives in summarize.go, gated behind
// an API key so triage works without any network access by default.
type Summarizer interface {
	Summarize(ctx context.Context, r Report) (string, error)
}

// Triage builds a Report, using summarizer to fill Summary if provided.
func Triage(ctx context.Context, before, after *prog.Prog, rawBacktrace []string, summarizer Summarizer) (Report, error) {
	r := Report{
		Demangled: DemangleBacktrace(rawBacktrace),
		ProgDiff:  DiffPrograms(before, after),
	}
	if summarizer == nil {
		return r, nil
	}
	s, err := summarizer.Summarize(ctx, r)
	if err != nil {
		return r, fmt.Errorf("triage: summarize: %w", err)
	}
	r.Summary = s
	return r, nil
}
