// Package logger is a small leveled logger in the same shape syzkaller's own
// pkg/log uses: a package-level verbosity threshold, Logf calls gated by a
// level, and Fatalf for unrecoverable setup errors. An optional Cloud Logging
// sink can be attached on top for production deployments.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

var verbosity int32

// SetVerbosity sets the global threshold; Logf calls above it are dropped.
func SetVerbosity(v int) {
	atomic.StoreInt32(&verbosity, int32(v))
}

// Sink receives every log line at or below the current verbosity, in
// addition to the default stderr output. Attach one with SetSink to mirror
// logs into e.g. Cloud Logging.
type Sink interface {
	Write(level int, line string)
}

var (
	sinkMu sync.RWMutex
	sink   Sink
)

// SetSink installs s as the additional destination for log lines, or clears
// it when s is nil.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkMu.Unlock()
}

func currentSink() Sink {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sink
}

// Logf logs at level: Logf(0, ...) is always printed, higher levels require
// a matching -v.
func Logf(level int, format string, args ...interface{}) {
	if int32(level) > atomic.LoadInt32(&verbosity) {
		return
	}
	line := fmt.Sprintf(format, args...)
	log.Output(2, line)
	if s := currentSink(); s != nil {
		s.Write(level, line)
	}
}

// Errorf always logs, independent of verbosity, and marks the line as an
// error in any attached sink's severity.
func Errorf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	log.Output(2, "ERROR: "+line)
	if s := currentSink(); s != nil {
		s.Write(-1, line)
	}
}

// Fatalf logs and terminates the process, for setup errors a worker cannot
// recover from (bad description file, unreachable harness binary).
func Fatalf(format string, args ...interface{}) {
	Errorf(format, args...)
	os.Exit(1)
}
