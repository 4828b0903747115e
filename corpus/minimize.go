package corpus

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nine-point-eight-p/flicker/prog"
)

// Minimize repeatedly tries dropping one call at a time from p, keeping the
// drop whenever keepsInteresting(candidate) still reports true, until no
// single-call removal can be kept. This is the generic, executor-agnostic
// half of minimization; what "interesting" means (still crashes, still
// covers the same edges) is entirely up to the caller.
func Minimize(p *prog.Prog, keepsInteresting func(*prog.Prog) bool) *prog.Prog {
	cur := p.Clone()
	for i := 0; i < len(cur.Calls); {
		candidate := cur.Clone()
		candidate.Calls = append(candidate.Calls[:i:i], candidate.Calls[i+1:]...)
		if candidate.Validate() == nil && keepsInteresting(candidate) {
			cur = candidate
			continue
		}
		i++
	}
	return cur
}

// DiffReport renders a human-readable diff between a program and its
// minimized form, so a triage step can show what minimization actually
// removed.
func DiffReport(before, after *prog.Prog) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(describeProg(before), describeProg(after), false)
	return dmp.DiffPrettyText(diffs)
}

func describeProg(p *prog.Prog) string {
	s := ""
	for i, c := range p.Calls {
		s += fmt.Sprintf("call %d: nr=%d args=%d\n", i, c.Nr, len(c.Args))
	}
	return s
}
