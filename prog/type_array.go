package prog

import "math/rand"

// ArrayType describes a variable- or fixed-length homogeneous sequence.
// A nil Range means the length is chosen by randArrayLength.
type ArrayType struct {
	TypeAttr
	Elem  Type
	Range *[2]uint64
}

func (t *ArrayType) Attr() TypeAttr { return t.TypeAttr }

func (t *ArrayType) length(rng *rand.Rand) uint64 {
	if t.Range != nil {
		lo, hi := t.Range[0], t.Range[1]
		if hi <= lo {
			return lo
		}
		return lo + uint64(rng.Int63n(int64(hi-lo)))
	}
	return randArrayLength(rng)
}

func (t *ArrayType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	n := t.length(rng)
	if ctx.GeneratingResource && n == 0 {
		// Never hand a zero-length array to code that's in the middle of
		// minting a resource: a resource-typed element inside it is how
		// nested resource dependencies get created.
		n = 1
	}
	elems := make([]Arg, 0, n)
	var calls []*Call
	for i := uint64(0); i < n; i++ {
		a, cs := GenerateArg(rng, ctx, t.Elem)
		elems = append(elems, a)
		calls = append(calls, cs...)
	}
	return GroupArg{Elems: elems}, calls
}

func (t *ArrayType) Default() Arg {
	if t.Range == nil {
		return GroupArg{}
	}
	min := t.Range[0]
	elems := make([]Arg, min)
	for i := range elems {
		elems[i] = t.Elem.Default()
	}
	return GroupArg{Elems: elems}
}

func (t *ArrayType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	group := arg.(GroupArg)
	elems := append([]Arg(nil), group.Elems...)
	var calls []*Call

	lo, hi := uint64(0), uint64(maxArrayLength)
	if t.Range != nil {
		lo, hi = t.Range[0], t.Range[1]
	}

	switch {
	case len(elems) > int(lo) && (len(elems) >= int(hi) || oneOf(rng, 3)):
		// Shrink.
		idx := rng.Intn(len(elems))
		elems = append(elems[:idx], elems[idx+1:]...)
	case uint64(len(elems)) < hi && oneOf(rng, 3):
		// Grow.
		a, cs := GenerateArg(rng, ctx, t.Elem)
		idx := rng.Intn(len(elems) + 1)
		elems = append(elems, nil)
		copy(elems[idx+1:], elems[idx:])
		elems[idx] = a
		calls = append(calls, cs...)
	case len(elems) > 0:
		// Mutate one element in place.
		idx := rng.Intn(len(elems))
		a, cs := t.Elem.Mutate(rng, ctx, elems[idx])
		elems[idx] = a
		calls = append(calls, cs...)
	}

	return GroupArg{Elems: elems}, calls
}
