package prog

import "math/rand"

// PointerType describes a field whose value is an address, usually backed
// by a nested argument the executor lays out in memory before the call.
type PointerType struct {
	TypeAttr
	Elem Type
}

func (t *PointerType) Attr() TypeAttr { return t.TypeAttr }

func (t *PointerType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	if !ctx.GeneratingResource && oneOf(rng, 1000) {
		return PointerArg{Kind: PointerAddr, Addr: 0}, nil
	}
	data, calls := GenerateArg(rng, ctx, t.Elem)
	return PointerArg{Kind: PointerData, Data: data}, calls
}

func (t *PointerType) Default() Arg {
	return PointerArg{Kind: PointerAddr, Addr: 0}
}

func (t *PointerType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	p := arg.(PointerArg)
	if p.Kind == PointerData && !oneOf(rng, 3) {
		data, calls := t.Elem.Mutate(rng, ctx, p.Data)
		return PointerArg{Kind: PointerData, Data: data}, calls
	}
	return t.Generate(rng, ctx)
}
