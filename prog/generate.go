package prog

import (
	"math/rand"

	"github.com/google/uuid"
)

// Prog is a complete, well-formed typed program: an ordered list of calls
// sharing a single Metadata.
type Prog struct {
	Metadata *Metadata
	Calls    []*Call
}

// Clone deep-copies the program so mutators can work on an independent copy.
func (p *Prog) Clone() *Prog {
	calls := make([]*Call, len(p.Calls))
	for i, c := range p.Calls {
		calls[i] = c.Clone()
	}
	return &Prog{Metadata: p.Metadata, Calls: calls}
}

// Generator produces fresh, well-formed programs up to MaxCalls calls long.
type Generator struct {
	MaxCalls int
}

// Generate resets ctx and accumulates whole-syscall generations (each of
// which may itself splice in prerequisite resource-producing calls) until
// the program reaches MaxCalls, then truncates any overshoot.
func (g *Generator) Generate(rng *rand.Rand, ctx *Context) *Prog {
	ctx.Reset()
	var calls []*Call
	syscalls := ctx.Syscalls()
	if len(syscalls) == 0 {
		invariant("Generate: metadata has no syscalls")
	}
	for len(calls) < g.MaxCalls {
		sc := syscalls[rng.Intn(len(syscalls))]
		calls = append(calls, GenerateCall(rng, ctx, sc)...)
	}
	if len(calls) > g.MaxCalls {
		calls = calls[:g.MaxCalls]
	}
	return &Prog{Metadata: ctx.Metadata(), Calls: calls}
}

// GenerateCall generates one call to sc, plus any prerequisite calls needed
// to produce the resources its arguments consume, and mints a fresh result
// identifier if sc returns a Resource.
func GenerateCall(rng *rand.Rand, ctx *Context, sc *Syscall) []*Call {
	args, calls := GenerateArgs(rng, ctx, sc.Fields)

	var resultID *uuid.UUID
	if rt, ok := sc.Ret.(*ResourceType); ok {
		id := ctx.AddResult(rt)
		resultID = &id
	}

	call := &Call{Nr: sc.Nr, Args: args, Result: resultID}
	return append(calls, call)
}

// GenerateArgs generates one argument per field, in order, collecting every
// prerequisite call along the way.
func GenerateArgs(rng *rand.Rand, ctx *Context, fields []Field) ([]Arg, []*Call) {
	args := make([]Arg, len(fields))
	var calls []*Call
	for i, f := range fields {
		a, cs := GenerateArg(rng, ctx, f.Type)
		args[i] = a
		calls = append(calls, cs...)
	}
	return args, calls
}

// GenerateArg generates a single argument of type t. Optional fields get a
// fair coin flip: on heads, generation recurses no further and emits no
// prerequisite calls. The value is the type's deterministic Default, except
// for a Resource, which gets a fallback literal picked at random rather than
// a freshly minted one.
func GenerateArg(rng *rand.Rand, ctx *Context, t Type) (Arg, []*Call) {
	if t.Attr().Optional && binary(rng) {
		if rt, ok := t.(*ResourceType); ok {
			return rt.chooseFallback(rng), nil
		}
		return t.Default(), nil
	}
	return t.Generate(rng, ctx)
}
