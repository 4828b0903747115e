package prog

import "math/rand"

// UnionType describes a field that holds exactly one of several named
// alternatives, picked uniformly at generation time. The chosen value is
// stored as the single element of a GroupArg: since mutation and wire
// encoding never need to ask "which alternative is this", there is no need
// to additionally persist a chosen-index discriminant.
type UnionType struct {
	TypeAttr
	Fields []Field
}

func (t *UnionType) Attr() TypeAttr { return t.TypeAttr }

func (t *UnionType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	f := t.Fields[rng.Intn(len(t.Fields))]
	a, calls := GenerateArg(rng, ctx, f.Type)
	return GroupArg{Elems: []Arg{a}}, calls
}

func (t *UnionType) Default() Arg {
	return GroupArg{Elems: []Arg{t.Fields[0].Type.Default()}}
}

func (t *UnionType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	// Picking a field is part of the value; mutating a union means
	// re-rolling which alternative holds, not tweaking the current one.
	return t.Generate(rng, ctx)
}
