package descr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nine-point-eight-p/flicker/prog"
)

// BuildMetadata resolves a Parsed description into a prog.Metadata, the
// boundary the rest of the engine operates behind. Syscall numbers that
// weren't given explicitly and have no matching "__NR_<name>" const resolve
// to their declaration order, which is enough to keep numbers distinct for
// standalone descriptions that aren't modeling a real kernel ABI.
func BuildMetadata(p *Parsed) (*prog.Metadata, error) {
	b := &builder{parsed: p, resourceCache: map[string]*prog.ResourceType{}}

	syscalls := make([]*prog.Syscall, 0, len(p.Funcs))
	for i, fn := range p.Funcs {
		nr := int(fn.Nr)
		if fn.Nr < 0 {
			nr = i
		}
		fields := make([]prog.Field, 0, len(fn.Args))
		for _, a := range fn.Args {
			t, err := b.buildType(a.Type)
			if err != nil {
				return nil, &Error{Msg: fmt.Sprintf("func %s arg %s: %v", fn.Name, a.Name, err)}
			}
			fields = append(fields, prog.Field{Name: a.Name, Type: t, Dir: t.Attr().Dir})
		}
		var ret prog.Type
		if fn.Ret != "" {
			t, err := b.buildType(fn.Ret)
			if err != nil {
				return nil, &Error{Msg: fmt.Sprintf("func %s return: %v", fn.Name, err)}
			}
			ret = t
		}
		syscalls = append(syscalls, &prog.Syscall{Nr: nr, Name: fn.Name, Fields: fields, Ret: ret})
	}

	return prog.NewMetadata(syscalls), nil
}

type builder struct {
	parsed        *Parsed
	resourceCache map[string]*prog.ResourceType
}

func (b *builder) buildType(expr string) (prog.Type, error) {
	expr = strings.TrimSpace(expr)
	optional := false
	if strings.HasSuffix(expr, " opt") {
		optional = true
		expr = strings.TrimSpace(strings.TrimSuffix(expr, "opt"))
	}

	name, argsStr, hasArgs := splitTypeName(expr)
	attr := prog.TypeAttr{Dir: prog.DirIn, Optional: optional}

	switch name {
	case "int8", "int16", "int32", "int64", "intptr":
		bits := intBits(name)
		rng, err := parseIntRange(argsStr, hasArgs)
		if err != nil {
			return nil, err
		}
		return &prog.IntType{TypeAttr: attr, Bits: bits, Range: rng}, nil

	case "ptr":
		args := splitTopLevel(argsStr, ',')
		if len(args) < 2 {
			return nil, fmt.Errorf("ptr requires direction and element type: %q", expr)
		}
		dir, err := parseDir(strings.TrimSpace(args[0]))
		if err != nil {
			return nil, err
		}
		elem, err := b.buildType(strings.TrimSpace(strings.Join(args[1:], ",")))
		if err != nil {
			return nil, err
		}
		return &prog.PointerType{TypeAttr: prog.TypeAttr{Dir: dir, Optional: optional}, Elem: elem}, nil

	case "array":
		args := splitTopLevel(argsStr, ',')
		if len(args) == 0 {
			return nil, fmt.Errorf("array requires an element type: %q", expr)
		}
		elemExpr := strings.TrimSpace(args[0])
		elem, err := b.buildType(elemExpr)
		if err != nil {
			return nil, err
		}
		var rng *[2]uint64
		if len(args) > 1 {
			rng, err = parseRangeTok(strings.TrimSpace(args[1]))
			if err != nil {
				return nil, err
			}
		}
		if elemExpr == "int8" {
			return &prog.BufferType{TypeAttr: attr, Kind: prog.BufferByte, Range: rng}, nil
		}
		return &prog.ArrayType{TypeAttr: attr, Elem: elem, Range: rng}, nil

	case "flags":
		fs, ok := b.parsed.findFlags(strings.TrimSpace(argsStr))
		if !ok {
			return nil, fmt.Errorf("unknown flags %q", argsStr)
		}
		values, err := b.resolveFlagValues(fs)
		if err != nil {
			return nil, err
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		deduped := dedupUint64(values)
		return &prog.FlagType{TypeAttr: attr, Values: deduped, IsBitmask: prog.IsBitmask(deduped)}, nil

	case "string", "stringnoz":
		noZero := name == "stringnoz"
		var values []string
		if hasArgs {
			sf, ok := b.parsed.findStrFlags(strings.TrimSpace(argsStr))
			if !ok {
				return nil, fmt.Errorf("unknown strflags %q", argsStr)
			}
			values = sf.Values
		}
		return &prog.BufferType{TypeAttr: attr, Kind: prog.BufferString, Values: values, NoZero: noZero}, nil

	case "filename":
		return &prog.BufferType{TypeAttr: attr, Kind: prog.BufferFilename}, nil

	default:
		if r, ok := b.parsed.findResource(name); ok {
			return b.buildResource(r, attr)
		}
		if s, ok := b.parsed.findStruct(name); ok {
			return b.buildStruct(s, attr)
		}
		if u, ok := b.parsed.findUnion(name); ok {
			return b.buildUnion(u, attr)
		}
		return nil, fmt.Errorf("unknown type %q", name)
	}
}

func (b *builder) buildResource(r *Resource, attr prog.TypeAttr) (prog.Type, error) {
	if cached, ok := b.resourceCache[r.Name]; ok {
		return &prog.ResourceType{TypeAttr: attr, Name: cached.Name, Values: cached.Values}, nil
	}
	values := make([]uint64, 0, len(r.Values))
	for _, v := range r.Values {
		values = append(values, uint64(v))
	}
	// A resource whose base names another resource (rather than a
	// primitive int type) inherits that parent's fallback values too.
	if parent, ok := b.parsed.findResource(r.Base); ok {
		parentType, err := b.buildResource(parent, prog.TypeAttr{})
		if err != nil {
			return nil, err
		}
		values = append(values, parentType.(*prog.ResourceType).Values...)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	values = dedupUint64(values)
	if len(values) == 0 {
		return nil, fmt.Errorf("resource %q has no fallback values", r.Name)
	}
	rt := &prog.ResourceType{TypeAttr: attr, Name: r.Name, Values: values}
	b.resourceCache[r.Name] = rt
	return rt, nil
}

func (b *builder) buildStruct(s *Struct, attr prog.TypeAttr) (prog.Type, error) {
	fields := make([]prog.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		t, err := b.buildType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("struct %s field %s: %w", s.Name, f.Name, err)
		}
		fields = append(fields, prog.Field{Name: f.Name, Type: t, Dir: t.Attr().Dir})
	}
	return &prog.StructType{TypeAttr: attr, Fields: fields}, nil
}

func (b *builder) buildUnion(u *Union, attr prog.TypeAttr) (prog.Type, error) {
	fields := make([]prog.Field, 0, len(u.Fields))
	for _, f := range u.Fields {
		t, err := b.buildType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("union %s field %s: %w", u.Name, f.Name, err)
		}
		fields = append(fields, prog.Field{Name: f.Name, Type: t, Dir: t.Attr().Dir})
	}
	return &prog.UnionType{TypeAttr: attr, Fields: fields}, nil
}

func (b *builder) resolveFlagValues(fs *FlagSet) ([]uint64, error) {
	out := make([]uint64, 0, len(fs.Values))
	for _, tok := range fs.Values {
		if v, ok := b.parsed.Consts[tok]; ok {
			out = append(out, uint64(v))
			continue
		}
		n, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("flag value %q is neither a known const nor a literal", tok)
		}
		out = append(out, uint64(n))
	}
	return out, nil
}

func dedupUint64(values []uint64) []uint64 {
	out := values[:0]
	var prev uint64
	for i, v := range values {
		if i == 0 || v != prev {
			out = append(out, v)
		}
		prev = v
	}
	return out
}

func intBits(name string) uint8 {
	switch name {
	case "int8":
		return 8
	case "int16":
		return 16
	case "int32":
		return 32
	default:
		return 64
	}
}

func parseDir(s string) (prog.Dir, error) {
	switch s {
	case "in":
		return prog.DirIn, nil
	case "out":
		return prog.DirOut, nil
	case "inout":
		return prog.DirInOut, nil
	default:
		return prog.DirIn, fmt.Errorf("unknown direction %q", s)
	}
}

func parseIntRange(argsStr string, hasArgs bool) (*[2]uint64, error) {
	if !hasArgs {
		return nil, nil
	}
	return parseRangeTok(argsStr)
}

func parseRangeTok(tok string) (*[2]uint64, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, nil
	}
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) == 1 {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 64)
		if err != nil {
			return nil, err
		}
		return &[2]uint64{0, v}, nil
	}
	lo, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 64)
	if err != nil {
		return nil, err
	}
	return &[2]uint64{lo, hi}, nil
}

// splitTypeName splits "name[args]" into ("name", "args", true), or
// "name" into ("name", "", false).
func splitTypeName(expr string) (string, string, bool) {
	open := strings.Index(expr, "[")
	if open < 0 {
		return expr, "", false
	}
	closeIdx := strings.LastIndex(expr, "]")
	if closeIdx < open {
		return expr, "", false
	}
	return strings.TrimSpace(expr[:open]), expr[open+1 : closeIdx], true
}
