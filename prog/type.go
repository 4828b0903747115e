package prog

import "math/rand"

// Generation and mutation budgets.
const (
	maxArrayLength  = 10
	maxBufferLength = 0x1000
)

// Type is the sum type over every argument shape a syscall field can take.
// Each variant knows how to generate a fresh value for itself, produce a
// deterministic default (used for optional fields and for rewiring
// references after a call is removed), and mutate an existing value.
//
// Concrete variants: *IntType, *FlagType, *ArrayType, *PointerType,
// *BufferType, *StructType, *UnionType, *ResourceType.
type Type interface {
	// Attr returns the direction/optionality shared by all variants.
	Attr() TypeAttr

	// Generate produces a fresh argument for this type, plus any calls that
	// must be spliced in before the call using it (resource creation).
	Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call)

	// Default returns the canonical zero/empty value for this type. It never
	// needs prerequisite calls: a default resource value is a literal
	// fallback, not a freshly created resource.
	Default() Arg

	// Mutate changes an existing argument in place (by returning its
	// replacement), plus any prerequisite calls the mutation introduced.
	Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call)
}

// Field is one named, directional member of a syscall's argument list or of
// a struct/union's field list.
type Field struct {
	Name string
	Type Type
	Dir  Dir
}
