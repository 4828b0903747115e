package prog

import "math/rand"

// ResourceType describes a named kernel-side handle (fd, pid, key id, ...).
// Values holds the fallback literals to use when no live resource of a
// compatible kind can be reused or created; construction must guarantee it
// is non-empty, since a resource type with no fallback would have no way to
// produce a value at all.
type ResourceType struct {
	TypeAttr
	Name   string
	Values []uint64
}

func (t *ResourceType) Attr() TypeAttr { return t.TypeAttr }

func (t *ResourceType) Default() Arg {
	return ResultArg{Kind: ResultLiteral, Value: t.Values[0]}
}

func (t *ResourceType) chooseFallback(rng *rand.Rand) Arg {
	return ResultArg{Kind: ResultLiteral, Value: t.Values[rng.Intn(len(t.Values))]}
}

// Generate implements the bounded-recursion resource algorithm: reuse an
// existing compatible resource most of the time, occasionally mint a new one
// by recursively generating a call that produces it, and fall back to a
// literal when neither applies. GeneratingResource bounds the recursion to
// one level so resource creation can't run away.
func (t *ResourceType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	oldGenerating := ctx.GeneratingResource
	canRecurse := !ctx.GeneratingResource
	if canRecurse {
		ctx.GeneratingResource = true
	}
	defer func() { ctx.GeneratingResource = oldGenerating }()

	reuse := false
	if canRecurse {
		reuse = nOutOf(rng, 4, 5)
	} else {
		reuse = nOutOf(rng, 19, 20)
	}
	if reuse {
		if arg, ok := t.useExisting(rng, ctx); ok {
			return arg, nil
		}
	}

	if canRecurse {
		if oneOf(rng, 4) {
			if arg, calls, ok := t.load(ctx); ok {
				return arg, calls
			}
		}
		if nOutOf(rng, 4, 5) {
			if arg, calls, ok := t.create(rng, ctx); ok {
				return arg, calls
			}
		}
	}

	return t.chooseFallback(rng), nil
}

func (t *ResourceType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	// A resource argument's entire value is "which handle", so mutation
	// regenerates it wholesale rather than tweaking bits of it.
	return t.Generate(rng, ctx)
}

func (t *ResourceType) useExisting(rng *rand.Rand, ctx *Context) (Arg, bool) {
	var candidates []CallResult
	for _, r := range ctx.Results {
		if rt, ok := r.Type.(*ResourceType); ok && rt.Name == t.Name {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	chosen := candidates[rng.Intn(len(candidates))]
	return ResultArg{Kind: ResultRef, Ref: chosen.ID}, true
}

// load is a reserved hook for sourcing a resource value from outside the
// current program (e.g. a pre-opened fd supplied by the harness). No
// external source is wired up yet, so it always defers to create/fallback.
func (t *ResourceType) load(ctx *Context) (Arg, []*Call, bool) {
	return nil, nil, false
}

func (t *ResourceType) create(rng *rand.Rand, ctx *Context) (Arg, []*Call, bool) {
	var candidates []*Syscall
	for _, sc := range ctx.Syscalls() {
		if rt, ok := sc.Ret.(*ResourceType); ok && rt.Name == t.Name {
			candidates = append(candidates, sc)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, false
	}
	sc := candidates[rng.Intn(len(candidates))]
	calls := GenerateCall(rng, ctx, sc)
	last := calls[len(calls)-1]
	if last.Result == nil {
		invariant("create: call to %s has a Resource return type but produced no result", sc.Name)
	}
	return ResultArg{Kind: ResultRef, Ref: *last.Result}, calls, true
}
