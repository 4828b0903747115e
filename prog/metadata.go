package prog

// Syscall is the description of one entry point: a stable number, a name for
// diagnostics, its argument fields in call order, and an optional return
// type (only Resource returns are meaningful to the engine).
type Syscall struct {
	Nr     int
	Name   string
	Fields []Field
	Ret    Type
}

// Metadata is the immutable, description-derived view of every syscall the
// engine knows how to generate and mutate. It is built once from a Parsed
// description (see package descr) and then shared read-only across workers;
// each worker keeps its own Context and RNG alongside a reference to the
// same Metadata.
type Metadata struct {
	Syscalls []*Syscall
	byNr     map[int]*Syscall
}

// NewMetadata builds a Metadata from an already-resolved syscall list. It
// panics if two syscalls share a number, since that would make dataflow
// replay during mutation ambiguous.
func NewMetadata(syscalls []*Syscall) *Metadata {
	byNr := make(map[int]*Syscall, len(syscalls))
	for _, s := range syscalls {
		if _, dup := byNr[s.Nr]; dup {
			invariant("duplicate syscall number %d (%s)", s.Nr, s.Name)
		}
		byNr[s.Nr] = s
	}
	return &Metadata{Syscalls: syscalls, byNr: byNr}
}

// FindNumber looks up a syscall by its number.
func (m *Metadata) FindNumber(nr int) (*Syscall, bool) {
	s, ok := m.byNr[nr]
	return s, ok
}
