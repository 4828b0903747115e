package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines []string
}

func (s *recordingSink) Write(level int, line string) {
	s.lines = append(s.lines, line)
}

func TestLogfRespectsVerbosity(t *testing.T) {
	sink := &recordingSink{}
	SetSink(sink)
	defer SetSink(nil)

	SetVerbosity(0)
	Logf(1, "hidden %d", 1)
	require.Empty(t, sink.lines)

	SetVerbosity(1)
	Logf(1, "visible %d", 2)
	require.Len(t, sink.lines, 1)
	require.Contains(t, sink.lines[0], "visible 2")
}

func TestErrorfAlwaysLogsRegardlessOfVerbosity(t *testing.T) {
	sink := &recordingSink{}
	SetSink(sink)
	defer SetSink(nil)

	SetVerbosity(0)
	Errorf("boom %s", "now")
	require.Len(t, sink.lines, 1)
	require.Contains(t, sink.lines[0], "boom now")
}
