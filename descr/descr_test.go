package descr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nine-point-eight-p/flicker/prog"
)

const sampleDescription = `
# constants
const __NR_open = 2
const __NR_close = 3
const O_RDONLY = 0
const O_WRONLY = 1
const O_RDWR = 2

resource fd[int32]: 0xffffffff

flags open_flags = O_RDONLY, O_WRONLY, O_RDWR

struct iovec {
	base	ptr[in, array[int8]]
	len	int32
}

func open(path filename, flags flags[open_flags]) fd
func close(fd fd)
`

func TestParseAndBuildMetadata(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleDescription))
	require.NoError(t, err)
	require.Len(t, p.Funcs, 2)
	require.Equal(t, int64(2), p.Consts["__NR_open"])

	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	require.Len(t, meta.Syscalls, 2)

	open, ok := meta.FindNumber(2)
	require.True(t, ok)
	require.Equal(t, "open", open.Name)
	require.IsType(t, &prog.ResourceType{}, open.Ret)

	closeCall, ok := meta.FindNumber(3)
	require.True(t, ok)
	require.Len(t, closeCall.Fields, 1)
	require.IsType(t, &prog.ResourceType{}, closeCall.Fields[0].Type)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("bogus declaration\n"))
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
}

func TestFlagsResolveConstAndLiteralValues(t *testing.T) {
	src := `
const FOO = 0x1
flags f = FOO, 2, 4
func g(x flags[f])
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	ft := meta.Syscalls[0].Fields[0].Type.(*prog.FlagType)
	require.Equal(t, []uint64{1, 2, 4}, ft.Values)
	require.True(t, ft.IsBitmask)
}

func TestSharedResourceReusesFallbackValues(t *testing.T) {
	src := `
resource fd[int32]: 0, 0xffffffff
func open() fd
func close(fd fd)
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)

	openRet := meta.Syscalls[0].Ret.(*prog.ResourceType)
	closeArg := meta.Syscalls[1].Fields[0].Type.(*prog.ResourceType)
	require.Equal(t, openRet.Name, closeArg.Name)
	require.Equal(t, openRet.Values, closeArg.Values)
}

func TestArrayOfInt8BecomesByteBuffer(t *testing.T) {
	src := `
func f(b array[int8])
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	require.IsType(t, &prog.BufferType{}, meta.Syscalls[0].Fields[0].Type)
}

func TestResourceValuesAreSortedAndDeduped(t *testing.T) {
	src := `
resource fd[int32]: 5, 1, 1, 3
func open() fd
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	rt := meta.Syscalls[0].Ret.(*prog.ResourceType)
	require.Equal(t, []uint64{1, 3, 5}, rt.Values)
}

func TestDerivedResourceInheritsParentValues(t *testing.T) {
	src := `
resource fd[int32]: 1
resource sock[fd]: 2
func open() fd
func socket() sock
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	sockRT := meta.Syscalls[1].Ret.(*prog.ResourceType)
	require.Equal(t, "sock", sockRT.Name)
	require.Equal(t, []uint64{1, 2}, sockRT.Values)
}

func TestUnionBuild(t *testing.T) {
	src := `
union u {
	a	int32
	b	int8
}
func f(x u)
`
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	meta, err := BuildMetadata(p)
	require.NoError(t, err)
	ut := meta.Syscalls[0].Fields[0].Type.(*prog.UnionType)
	require.Len(t, ut.Fields, 2)
}
