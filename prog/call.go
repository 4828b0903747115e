package prog

import "github.com/google/uuid"

// Arg is the sum type over the value a field is bound to at a particular
// call site.
type Arg interface{ isArg() }

// ConstArg is a plain integer value: the underlying storage for Int and Flag
// fields alike.
type ConstArg struct {
	Val uint64
}

func (ConstArg) isArg() {}

// PointerKind distinguishes a null/raw address from one backed by an actual
// in-memory payload.
type PointerKind int

const (
	PointerAddr PointerKind = iota
	PointerData
)

// PointerArg is either a bare address (e.g. NULL, or a special sentinel) or
// an address backed by a nested argument that the executor should place in
// memory before the call.
type PointerArg struct {
	Kind PointerKind
	Addr uint64
	Data Arg
}

func (PointerArg) isArg() {}

// DataKind distinguishes buffer arguments the fuzzer fills in (In) from ones
// the kernel fills in, for which only a length is meaningful (Out).
type DataKind int

const (
	DataIn DataKind = iota
	DataOut
)

// DataArg backs Buffer fields (string, filename, byte buffer).
type DataArg struct {
	Kind DataKind
	Data []byte // valid when Kind == DataIn
	Len  uint64 // valid when Kind == DataOut
}

func (DataArg) isArg() {}

// GroupArg backs Array/Struct/Union fields: an ordered list of sub-arguments.
// For a Union only one element is populated, matching the chosen field.
type GroupArg struct {
	Elems []Arg
}

func (GroupArg) isArg() {}

// ResultKind distinguishes a live reference to a resource minted earlier in
// the program from a fallback literal used when no compatible resource is
// available.
type ResultKind int

const (
	ResultRef ResultKind = iota
	ResultLiteral
)

// ResultArg backs Resource fields.
type ResultArg struct {
	Kind  ResultKind
	Ref   uuid.UUID // valid when Kind == ResultRef
	Value uint64    // valid when Kind == ResultLiteral
}

func (ResultArg) isArg() {}

// usesResult reports whether arg is itself a ResultArg referencing id. It
// intentionally does not recurse into GroupArg (array/struct/union)
// elements; see Remove's doc comment for why.
func usesResult(arg Arg, id uuid.UUID) bool {
	r, ok := arg.(ResultArg)
	return ok && r.Kind == ResultRef && r.Ref == id
}

// Call is one syscall invocation within a Program, together with the
// identifier of the resource it produced, if any.
type Call struct {
	Nr     int
	Args   []Arg
	Result *uuid.UUID
}

// Clone makes a deep copy of the call, including every nested argument, so
// that a mutator can freely modify the copy without aliasing the original
// program.
func (c *Call) Clone() *Call {
	clone := &Call{Nr: c.Nr, Args: make([]Arg, len(c.Args))}
	for i, a := range c.Args {
		clone.Args[i] = cloneArg(a)
	}
	if c.Result != nil {
		id := *c.Result
		clone.Result = &id
	}
	return clone
}

func cloneArg(arg Arg) Arg {
	switch a := arg.(type) {
	case PointerArg:
		if a.Kind == PointerData {
			a.Data = cloneArg(a.Data)
		}
		return a
	case DataArg:
		if a.Kind == DataIn {
			data := make([]byte, len(a.Data))
			copy(data, a.Data)
			a.Data = data
		}
		return a
	case GroupArg:
		elems := make([]Arg, len(a.Elems))
		for i, e := range a.Elems {
			elems[i] = cloneArg(e)
		}
		return GroupArg{Elems: elems}
	default:
		return arg
	}
}
