package prog

import "math/rand"

// MutationResult reports whether a mutator actually changed its input.
// Skipped is not an error: it means the mutator's preconditions didn't hold
// for this particular program (e.g. an empty corpus for Splice).
type MutationResult int

const (
	Skipped MutationResult = iota
	Mutated
)

// CorpusProvider is the slice of corpus access a mutator needs: enough to
// pick a random existing program to splice from, without the mutator
// package depending on how the corpus is persisted.
type CorpusProvider interface {
	Count() int
	Random(rng *rand.Rand) *Prog
}

// Mutator is one of the four program-level mutation strategies.
type Mutator interface {
	Name() string
	Mutate(rng *rand.Rand, meta *Metadata, corpus CorpusProvider, maxCalls int, p *Prog) (MutationResult, error)
}

// Mutators returns the full set the description names, in the order a
// scheduler would typically weight them.
func Mutators() []Mutator {
	return []Mutator{
		SpliceMutator{},
		InsertMutator{},
		RandArgMutator{},
		RemoveMutator{},
	}
}

// SpliceMutator replaces the tail of the program, starting at a random
// position, with the calls of a random corpus entry.
type SpliceMutator struct{}

func (SpliceMutator) Name() string { return "Splice" }

func (SpliceMutator) Mutate(rng *rand.Rand, meta *Metadata, corpus CorpusProvider, maxCalls int, p *Prog) (MutationResult, error) {
	if corpus.Count() == 0 || len(p.Calls) == 0 || len(p.Calls) > maxCalls {
		return Skipped, nil
	}
	other := corpus.Random(rng)
	pos := rng.Intn(len(p.Calls))

	calls := make([]*Call, pos, pos+len(other.Calls))
	copy(calls, p.Calls[:pos])
	for _, c := range other.Calls {
		calls = append(calls, c.Clone())
	}
	if len(calls) > maxCalls {
		calls = calls[:maxCalls]
	}
	p.Calls = calls
	return Mutated, nil
}

// InsertMutator generates one random syscall (with whatever prerequisite
// calls it needs) and splices it in at a random position.
type InsertMutator struct{}

func (InsertMutator) Name() string { return "Insert" }

func (InsertMutator) Mutate(rng *rand.Rand, meta *Metadata, corpus CorpusProvider, maxCalls int, p *Prog) (MutationResult, error) {
	if len(p.Calls) >= maxCalls {
		return Skipped, nil
	}
	pos := rng.Intn(len(p.Calls) + 1)
	ctx := WithCalls(meta, p.Calls[:pos])

	syscalls := meta.Syscalls
	sc := syscalls[rng.Intn(len(syscalls))]
	newCalls := GenerateCall(rng, ctx, sc)

	merged := make([]*Call, 0, len(p.Calls)+len(newCalls))
	merged = append(merged, p.Calls[:pos]...)
	merged = append(merged, newCalls...)
	merged = append(merged, p.Calls[pos:]...)
	if len(merged) > maxCalls {
		merged = merged[:maxCalls]
	}
	p.Calls = merged
	return Mutated, nil
}

// RandArgMutator mutates a single argument of a single call, splicing in any
// prerequisite calls the argument mutation required.
type RandArgMutator struct{}

func (RandArgMutator) Name() string { return "RandArg" }

func (RandArgMutator) Mutate(rng *rand.Rand, meta *Metadata, corpus CorpusProvider, maxCalls int, p *Prog) (MutationResult, error) {
	if len(p.Calls) == 0 {
		return Skipped, nil
	}
	pos := rng.Intn(len(p.Calls))
	ctx := WithCalls(meta, p.Calls[:pos])
	call := p.Calls[pos]

	sc, ok := meta.FindNumber(call.Nr)
	if !ok {
		invariant("RandArg: unknown syscall number %d", call.Nr)
	}
	if len(sc.Fields) == 0 {
		return Skipped, nil
	}
	fi := rng.Intn(len(sc.Fields))
	newArg, newCalls := sc.Fields[fi].Type.Mutate(rng, ctx, call.Args[fi])
	call.Args[fi] = newArg

	if len(newCalls) > 0 {
		merged := make([]*Call, 0, len(p.Calls)+len(newCalls))
		merged = append(merged, p.Calls[:pos]...)
		merged = append(merged, newCalls...)
		merged = append(merged, p.Calls[pos:]...)
		p.Calls = merged
	}
	if len(p.Calls) > maxCalls {
		p.Calls = p.Calls[:maxCalls]
	}
	return Mutated, nil
}

// RemoveMutator drops a single call. If that call produced a resource, every
// later reference to it is rewritten to that resource type's default
// fallback so the program stays well-formed.
//
// Rewiring only looks at each later call's top-level arguments and does not
// recurse into nested GroupArgs (arrays/structs/unions holding a ResultArg
// deeper down keep referencing the removed id). See DESIGN.md.
type RemoveMutator struct{}

func (RemoveMutator) Name() string { return "Remove" }

func (RemoveMutator) Mutate(rng *rand.Rand, meta *Metadata, corpus CorpusProvider, maxCalls int, p *Prog) (MutationResult, error) {
	if len(p.Calls) == 0 {
		return Skipped, nil
	}
	pos := rng.Intn(len(p.Calls))
	removed := p.Calls[pos]
	p.Calls = append(p.Calls[:pos:pos], p.Calls[pos+1:]...)

	if removed.Result == nil {
		return Mutated, nil
	}
	sc, ok := meta.FindNumber(removed.Nr)
	if !ok {
		invariant("Remove: unknown syscall number %d", removed.Nr)
	}
	rt, ok := sc.Ret.(*ResourceType)
	if !ok {
		invariant("Remove: call %s produced a result but its return type isn't a Resource", sc.Name)
	}
	id := *removed.Result
	def := rt.Default()
	for _, c := range p.Calls[pos:] {
		for i, a := range c.Args {
			if usesResult(a, id) {
				c.Args[i] = def
			}
		}
	}
	return Mutated, nil
}
