package prog

import "math/rand"

// FlagType describes an integer field whose legal values come from a named
// enumeration. IsBitmask is precomputed at construction time (see the
// IsBitmask function) and steers generation/mutation between
// "pick one enumerator" and "OR a few enumerators together" behavior.
type FlagType struct {
	TypeAttr
	Values    []uint64
	IsBitmask bool
}

func (t *FlagType) Attr() TypeAttr { return t.TypeAttr }

func (t *FlagType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	return ConstArg{Val: t.generateImpl(rng, 0)}, nil
}

func (t *FlagType) Default() Arg { return ConstArg{Val: 0} }

func (t *FlagType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	old := arg.(ConstArg).Val
	for {
		v := t.generateImpl(rng, old)
		if v != old {
			return ConstArg{Val: v}, nil
		}
	}
}

// generateImpl reproduces syzkaller's flag-generation distribution: rarely
// fully random or zero, occasionally drifting to the next enumerator for a
// non-bitmask flag, otherwise picking one enumerator outright; for bitmasks,
// occasionally all-zero and otherwise XOR-ing a handful of enumerators
// together, sometimes substituting an adjacent bit to explore nearby values.
func (t *FlagType) generateImpl(rng *rand.Rand, old uint64) uint64 {
	if len(t.Values) == 0 {
		return 0
	}
	if oneOf(rng, 100) {
		return rng.Uint64()
	}
	if oneOf(rng, 50) {
		return 0
	}
	if len(t.Values) == 1 {
		if binary(rng) {
			return 0
		}
		return t.Values[0]
	}
	if !t.IsBitmask {
		if old != 0 && nOutOf(rng, 1, 10) {
			if idx := indexOfUint64(t.Values, old); idx >= 0 {
				return t.Values[(idx+1)%len(t.Values)]
			}
		}
		if nOutOf(rng, 9, 10) {
			return t.Values[rng.Intn(len(t.Values))]
		}
	}

	if oneOf(rng, 20) {
		return 0
	}
	v := old
	for i := 0; i < 10; i++ {
		pick := t.Values[rng.Intn(len(t.Values))]
		if oneOf(rng, 10) {
			pick = adjacentBit(rng, pick)
		}
		v ^= pick
		if oneOf(rng, 3) {
			break
		}
	}
	return v
}

func indexOfUint64(vs []uint64, v uint64) int {
	for i, x := range vs {
		if x == v {
			return i
		}
	}
	return -1
}

// adjacentBit shifts the lowest set bit of v one position, to explore values
// near a known-good enumerator instead of only ever combining exact ones.
func adjacentBit(rng *rand.Rand, v uint64) uint64 {
	if v == 0 {
		return v
	}
	lowest := v & (^v + 1)
	if binary(rng) {
		return lowest << 1
	}
	if lowest > 1 {
		return lowest >> 1
	}
	return lowest
}

// IsBitmask implements the invariant from the description: an empty or
// zero-led value set is never a bitmask, otherwise it is one iff every pair
// of (sorted, distinct) values shares no set bit. Exported so description
// builders (package descr) can precompute FlagType.IsBitmask once from the
// sorted, deduped value set rather than re-deriving it at generation time.
func IsBitmask(sorted []uint64) bool {
	if len(sorted) == 0 || sorted[0] == 0 {
		return false
	}
	var seen uint64
	for _, v := range sorted {
		if v&seen != 0 {
			return false
		}
		seen |= v
	}
	return true
}
