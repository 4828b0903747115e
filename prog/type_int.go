package prog

import "math/rand"

// IntType describes a plain integer field of a given bit width, optionally
// restricted to a half-open range [Lo, Hi).
type IntType struct {
	TypeAttr
	Bits  uint8
	Range *[2]uint64
}

func (t *IntType) Attr() TypeAttr { return t.TypeAttr }

func (t *IntType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	return ConstArg{Val: t.generateValue(rng)}, nil
}

func (t *IntType) Default() Arg { return ConstArg{Val: 0} }

func (t *IntType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	old := arg.(ConstArg).Val
	var v uint64
	if binary(rng) {
		v = t.generateValue(rng)
	} else {
		switch rng.Intn(5) {
		case 0:
			v = old + uint64(rng.Intn(4)) + 1
		case 1:
			v = old - (uint64(rng.Intn(4)) + 1)
		default:
			bits := t.Bits
			if bits == 0 {
				bits = 64
			}
			v = old ^ (uint64(1) << uint(rng.Intn(int(bits))))
		}
	}
	return ConstArg{Val: maskBits(v, t.Bits)}, nil
}

func (t *IntType) generateValue(rng *rand.Rand) uint64 {
	if t.Range != nil {
		lo, hi := t.Range[0], t.Range[1]
		if hi <= lo {
			return lo
		}
		return lo + uint64(rng.Int63n(int64(hi-lo)))
	}
	return randInt(rng, t.Bits)
}
