package prog

import "math/rand"

// StructType describes an ordered, fixed set of named fields.
type StructType struct {
	TypeAttr
	Fields []Field
}

func (t *StructType) Attr() TypeAttr { return t.TypeAttr }

func (t *StructType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	args, calls := GenerateArgs(rng, ctx, t.Fields)
	return GroupArg{Elems: args}, calls
}

func (t *StructType) Default() Arg {
	elems := make([]Arg, len(t.Fields))
	for i, f := range t.Fields {
		elems[i] = f.Type.Default()
	}
	return GroupArg{Elems: elems}
}

func (t *StructType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	group := arg.(GroupArg)
	elems := append([]Arg(nil), group.Elems...)
	if len(t.Fields) == 0 {
		return GroupArg{Elems: elems}, nil
	}
	idx := rng.Intn(len(t.Fields))
	a, calls := t.Fields[idx].Type.Mutate(rng, ctx, elems[idx])
	elems[idx] = a
	return GroupArg{Elems: elems}, calls
}
