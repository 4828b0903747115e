package prog

import "fmt"

// invariant panics when a core data-model invariant is violated. These are
// programmer errors (malformed metadata, a caller passing calls in the wrong
// shape) rather than anything a fuzzing loop should try to recover from.
func invariant(format string, args ...interface{}) {
	panic(fmt.Sprintf("prog: invariant violated: "+format, args...))
}
