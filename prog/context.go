package prog

import "github.com/google/uuid"

// CallResult records one resource minted by a call that is still live: its
// globally unique identifier and the type it was created as.
type CallResult struct {
	ID   uuid.UUID
	Type Type
}

// Context is the generation/mutation-time view of which resources are
// currently live. It is not part of the serialized program: a fresh Context
// is built from scratch for each generation, and WithCalls reconstructs one
// by replaying a program prefix whenever a mutator needs to know what
// resources exist at some position inside an existing program.
//
// GeneratingResource bounds recursive resource creation: ResourceType.Generate
// sets it for the duration of its own call so that any resource it
// recursively creates along the way does not itself try to recurse further.
type Context struct {
	metadata           *Metadata
	Results            []CallResult
	GeneratingResource bool
	strings            map[string]struct{}
	filenames          map[string]struct{}
}

// NewContext builds an empty Context for the given metadata, ready to drive
// a fresh top-to-bottom generation.
func NewContext(metadata *Metadata) *Context {
	return &Context{
		metadata:  metadata,
		strings:   make(map[string]struct{}),
		filenames: make(map[string]struct{}),
	}
}

// WithCalls rebuilds the live-resource state as of just after calls, by
// replaying each call's Result in order. This lets a mutator operate as if
// it held a persistent per-position snapshot without actually maintaining
// one.
func WithCalls(metadata *Metadata, calls []*Call) *Context {
	ctx := NewContext(metadata)
	for _, c := range calls {
		if c.Result == nil {
			continue
		}
		sc, ok := metadata.FindNumber(c.Nr)
		if !ok {
			invariant("WithCalls: unknown syscall number %d", c.Nr)
		}
		if sc.Ret == nil {
			invariant("WithCalls: call to %s produced a result but has no return type", sc.Name)
		}
		ctx.Results = append(ctx.Results, CallResult{ID: *c.Result, Type: sc.Ret})
	}
	return ctx
}

// Reset clears generation state so the same Context value can drive another
// independent top-to-bottom generation.
func (c *Context) Reset() {
	c.Results = nil
	c.GeneratingResource = false
	c.strings = make(map[string]struct{})
	c.filenames = make(map[string]struct{})
}

// Metadata returns the metadata this context was built from.
func (c *Context) Metadata() *Metadata { return c.metadata }

// Syscalls is a convenience accessor mirroring the metadata's syscall list.
func (c *Context) Syscalls() []*Syscall { return c.metadata.Syscalls }

// AddResult mints a new globally unique result identifier for a value of
// type t and records it as live.
func (c *Context) AddResult(t Type) uuid.UUID {
	id := uuid.New()
	c.Results = append(c.Results, CallResult{ID: id, Type: t})
	return id
}

// noteString records a generated string value so later string generation in
// the same program can occasionally reuse it (a cheap way to make related
// calls agree on e.g. a file path).
func (c *Context) noteString(s string) { c.strings[s] = struct{}{} }

// noteFilename records a generated filename for the same reuse purpose.
func (c *Context) noteFilename(s string) { c.filenames[s] = struct{}{} }

func (c *Context) stringPool() []string {
	out := make([]string, 0, len(c.strings))
	for s := range c.strings {
		out = append(out, s)
	}
	return out
}

func (c *Context) filenamePool() []string {
	out := make([]string, 0, len(c.filenames))
	for s := range c.filenames {
		out = append(out, s)
	}
	return out
}
