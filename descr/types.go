// Package descr is a minimal stand-in for the external description and
// constants parser the engine normally sits behind. Real syzlang-style
// descriptions and their constant files are the concern of a separate
// parser component (out of scope here, per the engine's external-interface
// boundary); this package implements just enough of a compact description
// language to build a prog.Metadata end to end, for tests, examples, and
// small standalone fuzzing targets that don't need the full syzlang corpus.
package descr

// Func is one parsed function (syscall) declaration.
type Func struct {
	Name string
	Nr   int64 // -1 if not resolved from consts
	Args []Arg
	Ret  string // "" for void, else a type expression
}

// Arg is one parsed function argument: a name plus a type expression.
type Arg struct {
	Name string
	Type string
}

// Resource is a parsed `resource NAME[BASE]: v1, v2, ...` declaration.
type Resource struct {
	Name   string
	Base   string
	Values []int64
}

// FlagSet is a parsed `flags NAME = v1, v2, ...` declaration. Values may
// reference named consts, which are resolved against Consts at build time.
type FlagSet struct {
	Name   string
	Values []string
}

// StrFlagSet is a parsed `strflags NAME = "a", "b", ...` declaration, used
// for String buffer fields with a preset pool of literal values.
type StrFlagSet struct {
	Name   string
	Values []string
}

// Struct is a parsed `struct NAME { ... }` declaration.
type Struct struct {
	Name   string
	Fields []Arg
}

// Union is a parsed `union NAME { ... }` declaration.
type Union struct {
	Name   string
	Fields []Arg
}

// Parsed is the full, resolved view of a description file: the collaborator
// boundary the engine's Metadata is built from.
type Parsed struct {
	Funcs      []Func
	Resources  []Resource
	Flags      []FlagSet
	StrFlags   []StrFlagSet
	Structs    []Struct
	Unions     []Union
	Consts     map[string]int64
}

func (p *Parsed) findResource(name string) (*Resource, bool) {
	for i := range p.Resources {
		if p.Resources[i].Name == name {
			return &p.Resources[i], true
		}
	}
	return nil, false
}

func (p *Parsed) findFlags(name string) (*FlagSet, bool) {
	for i := range p.Flags {
		if p.Flags[i].Name == name {
			return &p.Flags[i], true
		}
	}
	return nil, false
}

func (p *Parsed) findStrFlags(name string) (*StrFlagSet, bool) {
	for i := range p.StrFlags {
		if p.StrFlags[i].Name == name {
			return &p.StrFlags[i], true
		}
	}
	return nil, false
}

func (p *Parsed) findStruct(name string) (*Struct, bool) {
	for i := range p.Structs {
		if p.Structs[i].Name == name {
			return &p.Structs[i], true
		}
	}
	return nil, false
}

func (p *Parsed) findUnion(name string) (*Union, bool) {
	for i := range p.Unions {
		if p.Unions[i].Name == name {
			return &p.Unions[i], true
		}
	}
	return nil, false
}
