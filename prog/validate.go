package prog

import "fmt"

// Validate checks the well-formedness invariants the rest of the engine
// relies on: every call references a known syscall, every ResultArg::Ref
// points at a result minted by an earlier call in the same program (no
// forward references, no references to results from other programs), and
// every call that declares a Resource return type actually produced one.
func (p *Prog) Validate() error {
	live := make(map[string]struct{})
	for i, c := range p.Calls {
		sc, ok := p.Metadata.FindNumber(c.Nr)
		if !ok {
			return fmt.Errorf("prog: call %d: unknown syscall number %d", i, c.Nr)
		}
		if len(c.Args) != len(sc.Fields) {
			return fmt.Errorf("prog: call %d (%s): %d args, syscall declares %d fields", i, sc.Name, len(c.Args), len(sc.Fields))
		}
		for j, a := range c.Args {
			if err := validateArg(a, live, i, j); err != nil {
				return err
			}
		}
		_, isResource := sc.Ret.(*ResourceType)
		if isResource && c.Result == nil {
			return fmt.Errorf("prog: call %d (%s): return type is a Resource but no result was minted", i, sc.Name)
		}
		if !isResource && c.Result != nil {
			return fmt.Errorf("prog: call %d (%s): result minted but return type isn't a Resource", i, sc.Name)
		}
		if c.Result != nil {
			live[c.Result.String()] = struct{}{}
		}
	}
	return nil
}

func validateArg(arg Arg, live map[string]struct{}, callIdx, argIdx int) error {
	switch a := arg.(type) {
	case ResultArg:
		if a.Kind == ResultRef {
			if _, ok := live[a.Ref.String()]; !ok {
				return fmt.Errorf("prog: call %d arg %d: references unknown or forward resource %s", callIdx, argIdx, a.Ref)
			}
		}
	case PointerArg:
		if a.Kind == PointerData {
			return validateArg(a.Data, live, callIdx, argIdx)
		}
	case GroupArg:
		for _, e := range a.Elems {
			if err := validateArg(e, live, callIdx, argIdx); err != nil {
				return err
			}
		}
	}
	return nil
}
