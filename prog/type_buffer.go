package prog

import "math/rand"

// BufferKind distinguishes the three flavors of Buffer field.
type BufferKind int

const (
	BufferString BufferKind = iota
	BufferFilename
	BufferByte
)

// BufferType describes a String, Filename, or raw Byte buffer field.
// Values holds preset string choices for a String buffer (empty means
// "generate freely"); Range bounds a Byte buffer's length.
type BufferType struct {
	TypeAttr
	Kind   BufferKind
	Values []string
	NoZero bool
	Range  *[2]uint64
}

func (t *BufferType) Attr() TypeAttr { return t.TypeAttr }

func (t *BufferType) Generate(rng *rand.Rand, ctx *Context) (Arg, []*Call) {
	if t.Attr().Dir == DirOut {
		return DataArg{Kind: DataOut, Len: t.outLength(rng)}, nil
	}
	switch t.Kind {
	case BufferString:
		return DataArg{Kind: DataIn, Data: []byte(t.generateString(rng, ctx))}, nil
	case BufferFilename:
		return DataArg{Kind: DataIn, Data: []byte(t.generateFilename(rng, ctx))}, nil
	default:
		return DataArg{Kind: DataIn, Data: t.generateBytes(rng)}, nil
	}
}

func (t *BufferType) Default() Arg {
	if t.Attr().Dir == DirOut {
		return DataArg{Kind: DataOut, Len: 0}
	}
	return DataArg{Kind: DataIn, Data: nil}
}

func (t *BufferType) Mutate(rng *rand.Rand, ctx *Context, arg Arg) (Arg, []*Call) {
	d := arg.(DataArg)
	if d.Kind == DataOut {
		switch t.Kind {
		case BufferFilename:
			if oneOf(rng, 100) {
				return DataArg{Kind: DataOut, Len: randFilenameLength(rng)}, nil
			}
		}
		return DataArg{Kind: DataOut, Len: mutateBufferLength(rng, d.Len, t.Range)}, nil
	}

	switch t.Kind {
	case BufferString:
		if len(t.Values) > 0 {
			data := []byte(t.generateString(rng, ctx))
			return DataArg{Kind: DataIn, Data: truncate(data, maxBufferLength)}, nil
		}
		return DataArg{Kind: DataIn, Data: mutateBytes(rng, d.Data, nil)}, nil
	case BufferFilename:
		data := []byte(t.generateFilename(rng, ctx))
		return DataArg{Kind: DataIn, Data: truncate(data, maxBufferLength)}, nil
	default:
		data := mutateBytes(rng, d.Data, t.Range)
		return DataArg{Kind: DataIn, Data: data}, nil
	}
}

func (t *BufferType) outLength(rng *rand.Rand) uint64 {
	if t.Kind == BufferFilename {
		return randFilenameLength(rng)
	}
	if t.Range != nil {
		lo, hi := t.Range[0], t.Range[1]
		if hi <= lo {
			return lo
		}
		return lo + uint64(rng.Int63n(int64(hi-lo)))
	}
	return randBufferLength(rng)
}

func (t *BufferType) generateString(rng *rand.Rand, ctx *Context) string {
	var s string
	switch {
	case len(t.Values) > 0 && nOutOf(rng, 3, 4):
		s = t.Values[rng.Intn(len(t.Values))]
	default:
		if pool := ctx.stringPool(); len(pool) > 0 && nOutOf(rng, 1, 5) {
			s = pool[rng.Intn(len(pool))]
		} else {
			s = randString(rng)
		}
	}
	ctx.noteString(s)
	if !t.NoZero && !oneOf(rng, 100) {
		s += "\x00"
	}
	return s
}

func (t *BufferType) generateFilename(rng *rand.Rand, ctx *Context) string {
	if oneOf(rng, 100) {
		special := []string{"", "."}
		s := special[rng.Intn(len(special))]
		ctx.noteFilename(s)
		return s
	}
	s := randFilename(rng, ctx.filenamePool())
	ctx.noteFilename(s)
	if !t.NoZero {
		s += "\x00"
	}
	return s
}

func (t *BufferType) generateBytes(rng *rand.Rand) []byte {
	n := t.outLength(rng)
	if t.Kind == BufferByte && t.Range == nil {
		n = randBufferLength(rng)
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rng.Intn(256))
	}
	return buf
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// mutateBufferLength performs a centered random walk in [-16, 16] until the
// length actually changes, then clamps it to range (or [0, maxBufferLength]
// when no range is declared).
func mutateBufferLength(rng *rand.Rand, old uint64, bufRange *[2]uint64) uint64 {
	lo, hi := uint64(0), uint64(maxBufferLength)
	if bufRange != nil {
		lo, hi = bufRange[0], bufRange[1]
	}
	next := old
	for next == old {
		delta := rng.Intn(33) - 16
		signed := int64(old) + int64(delta)
		if signed < 0 {
			signed = 0
		}
		next = uint64(signed)
	}
	if next < lo {
		next = lo
	}
	if next > hi {
		next = hi
	}
	return next
}

// mutateBytes applies a small budget of byte-level havoc (flip, insert,
// delete, arithmetic) and then clamps the result to range (or
// [0, maxBufferLength]).
func mutateBytes(rng *rand.Rand, data []byte, bufRange *[2]uint64) []byte {
	out := append([]byte(nil), data...)
	for {
		if len(out) == 0 {
			out = append(out, byte(rng.Intn(256)))
		} else {
			switch rng.Intn(4) {
			case 0:
				out[rng.Intn(len(out))] = byte(rng.Intn(256))
			case 1:
				idx := rng.Intn(len(out) + 1)
				out = append(out, 0)
				copy(out[idx+1:], out[idx:])
				out[idx] = byte(rng.Intn(256))
			case 2:
				idx := rng.Intn(len(out))
				out = append(out[:idx], out[idx+1:]...)
			default:
				idx := rng.Intn(len(out))
				out[idx] += byte(rng.Intn(8)) - 4
			}
		}
		if oneOf(rng, 3) {
			break
		}
	}

	lo, hi := uint64(0), uint64(maxBufferLength)
	if bufRange != nil {
		lo, hi = bufRange[0], bufRange[1]
	}
	if uint64(len(out)) < lo {
		grown := make([]byte, lo)
		copy(grown, out)
		out = grown
	}
	if uint64(len(out)) > hi {
		out = out[:hi]
	}
	if uint64(len(out)) > maxBufferLength {
		out = out[:maxBufferLength]
	}
	return out
}
