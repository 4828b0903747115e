package corpus

import "github.com/nine-point-eight-p/flicker/prog"

// InfluenceMatrix reports, for each ordered syscall pair (src, dst), whether
// src can produce a resource of a kind dst consumes: InfluenceMatrix[src][dst]
// is 1 when a program that wants dst's input well-formed benefits from src
// appearing earlier. It is a static over-approximation computed once from
// metadata, the same shape as a scheduler would use to bias call ordering
// when seeding a new program, without trying every resource kind pairing at
// fuzz time.
type InfluenceMatrix [][]uint8

// BuildInfluenceMatrix walks every syscall's argument and return types,
// recording which syscalls produce (dir out) and which consume (dir in or
// inout) each named resource kind, then marks src->dst wherever src produces
// a kind dst consumes.
func BuildInfluenceMatrix(meta *prog.Metadata) InfluenceMatrix {
	syscalls := meta.Syscalls
	byResource := map[string]struct {
		producers []int
		consumers []int
	}{}

	for i, sc := range syscalls {
		note := func(name string, dir prog.Dir) {
			e := byResource[name]
			switch dir {
			case prog.DirOut:
				e.producers = append(e.producers, i)
			default: // DirIn, DirInOut
				e.consumers = append(e.consumers, i)
			}
			byResource[name] = e
		}
		for _, f := range sc.Fields {
			walkResources(f.Type, f.Dir, note)
		}
		if sc.Ret != nil {
			walkResources(sc.Ret, prog.DirOut, note)
		}
	}

	m := make(InfluenceMatrix, len(syscalls))
	for i := range m {
		m[i] = make([]uint8, len(syscalls))
	}
	for _, e := range byResource {
		for _, src := range e.producers {
			for _, dst := range e.consumers {
				if src != dst {
					m[src][dst] = 1
				}
			}
		}
	}
	return m
}

// walkResources visits every ResourceType reachable from t, reporting each
// with the effective direction it is used at (dir overrides a nested field's
// own direction the way syzkaller's ForeachType propagates it).
func walkResources(t prog.Type, dir prog.Dir, note func(name string, dir prog.Dir)) {
	switch v := t.(type) {
	case *prog.ResourceType:
		note(v.Name, dir)
	case *prog.PointerType:
		walkResources(v.Elem, dir, note)
	case *prog.ArrayType:
		walkResources(v.Elem, dir, note)
	case *prog.StructType:
		for _, f := range v.Fields {
			walkResources(f.Type, dir, note)
		}
	case *prog.UnionType:
		for _, f := range v.Fields {
			walkResources(f.Type, dir, note)
		}
	}
}
