package corpus

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nine-point-eight-p/flicker/prog"
)

func testMetadata() *prog.Metadata {
	fd := &prog.ResourceType{Name: "fd", Values: []uint64{0xffffffff}}
	return prog.NewMetadata([]*prog.Syscall{
		{Nr: 0, Name: "open", Fields: nil, Ret: fd},
		{Nr: 1, Name: "close", Fields: []prog.Field{{Name: "fd", Type: fd, Dir: prog.DirIn}}},
	})
}

func testProg(meta *prog.Metadata, nr int) *prog.Prog {
	return &prog.Prog{Metadata: meta, Calls: []*prog.Call{{Nr: nr}}}
}

func TestAddPersistsAndDeduplicates(t *testing.T) {
	meta := testMetadata()
	dir := t.TempDir()
	c, err := Open(dir, meta)
	require.NoError(t, err)

	p := testProg(meta, 1)
	added, err := c.Add(p)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 1, c.Count())

	addedAgain, err := c.Add(p.Clone())
	require.NoError(t, err)
	require.False(t, addedAgain)
	require.Equal(t, 1, c.Count())
}

func TestOpenReloadsPersistedPrograms(t *testing.T) {
	meta := testMetadata()
	dir := t.TempDir()
	c, err := Open(dir, meta)
	require.NoError(t, err)

	p := testProg(meta, 1)
	_, err = c.Add(p)
	require.NoError(t, err)

	reopened, err := Open(dir, meta)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Count())
	require.Equal(t, p.ToExecBytes(), reopened.All()[0].ToExecBytes())
}

func TestIndexRecordRoundTrips(t *testing.T) {
	data := BuildIndexRecord("abc123", 3, 128)
	rec := ReadIndexRecord(data)
	want := IndexRecord{Fingerprint: "abc123", NumCalls: 3, SizeBytes: 128}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("index record mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexSidecarWrittenAlongsideProgram(t *testing.T) {
	meta := testMetadata()
	dir := t.TempDir()
	c, err := Open(dir, meta)
	require.NoError(t, err)

	p := testProg(meta, 1)
	_, err = c.Add(p)
	require.NoError(t, err)

	fp := p.Fingerprint()
	require.FileExists(t, filepath.Join(dir, fp))
	require.FileExists(t, filepath.Join(dir, fp+".idx"))
}

func TestBuildInfluenceMatrixMarksProducerConsumerPairs(t *testing.T) {
	meta := testMetadata()
	m := BuildInfluenceMatrix(meta)
	require.Len(t, m, 2)
	require.EqualValues(t, 1, m[0][1]) // open (produces fd) -> close (consumes fd)
	require.EqualValues(t, 0, m[1][0])
}

func TestRandomReturnsAClone(t *testing.T) {
	meta := testMetadata()
	dir := t.TempDir()
	c, err := Open(dir, meta)
	require.NoError(t, err)
	p := testProg(meta, 1)
	_, err = c.Add(p)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	got := c.Random(rng)
	require.NotSame(t, p, got)
	require.Equal(t, p.ToExecBytes(), got.ToExecBytes())
}
