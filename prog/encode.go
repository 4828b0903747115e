package prog

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// ToExecBytes renders the program into the fixed-width, little-endian wire
// format the in-kernel harness decodes. It is one-way: the harness, not this
// engine, is responsible for interpreting the bytes against the statically
// compiled call signatures it was built with. Resource references are
// resolved positionally: a ResultArg::Ref is written as the index of the
// call that produced it, not its (otherwise meaningless to the harness)
// generation-time identifier.
func (p *Prog) ToExecBytes() []byte {
	var buf bytes.Buffer
	idx := make(map[uuid.UUID]uint64, len(p.Calls))

	writeU32(&buf, uint32(len(p.Calls)))
	for i, c := range p.Calls {
		writeU32(&buf, uint32(c.Nr))
		for _, a := range c.Args {
			encodeWireArg(&buf, a, idx)
		}
		if c.Result != nil {
			idx[*c.Result] = uint64(i)
		}
	}
	return buf.Bytes()
}

func encodeWireArg(buf *bytes.Buffer, arg Arg, idx map[uuid.UUID]uint64) {
	switch a := arg.(type) {
	case ConstArg:
		writeU64(buf, a.Val)
	case PointerArg:
		if a.Kind == PointerAddr {
			buf.WriteByte(0)
			writeU64(buf, a.Addr)
		} else {
			buf.WriteByte(1)
			encodeWireArg(buf, a.Data, idx)
		}
	case DataArg:
		if a.Kind == DataIn {
			writeU32(buf, uint32(len(a.Data)))
			buf.Write(a.Data)
		} else {
			writeU64(buf, a.Len)
		}
	case GroupArg:
		for _, e := range a.Elems {
			encodeWireArg(buf, e, idx)
		}
	case ResultArg:
		if a.Kind == ResultRef {
			buf.WriteByte(0)
			writeU64(buf, idx[a.Ref])
		} else {
			buf.WriteByte(1)
			writeU64(buf, a.Value)
		}
	default:
		invariant("encodeWireArg: unknown arg type %T", arg)
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// Canonical (disk) encoding. Unlike the wire format, this one is
// self-describing and round-trips, since the corpus needs to read programs
// back, not just hand them to an executor. It tags every argument with a
// one-byte kind so decoding never needs a Metadata/Type walk in lock-step.

type argTag byte

const (
	tagConst argTag = iota
	tagPointerAddr
	tagPointerData
	tagDataIn
	tagDataOut
	tagGroup
	tagResultRef
	tagResultLiteral
)

// Marshal renders the program into the canonical, round-trippable form used
// for on-disk corpus storage.
func (p *Prog) Marshal() []byte {
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(p.Calls)))
	for _, c := range p.Calls {
		marshalCall(&buf, c)
	}
	return buf.Bytes()
}

func marshalCall(buf *bytes.Buffer, c *Call) {
	writeU32(buf, uint32(c.Nr))
	if c.Result != nil {
		buf.WriteByte(1)
		id, _ := c.Result.MarshalBinary()
		buf.Write(id)
	} else {
		buf.WriteByte(0)
	}
	writeU32(buf, uint32(len(c.Args)))
	for _, a := range c.Args {
		marshalArg(buf, a)
	}
}

func marshalArg(buf *bytes.Buffer, arg Arg) {
	switch a := arg.(type) {
	case ConstArg:
		buf.WriteByte(byte(tagConst))
		writeU64(buf, a.Val)
	case PointerArg:
		if a.Kind == PointerAddr {
			buf.WriteByte(byte(tagPointerAddr))
			writeU64(buf, a.Addr)
		} else {
			buf.WriteByte(byte(tagPointerData))
			marshalArg(buf, a.Data)
		}
	case DataArg:
		if a.Kind == DataIn {
			buf.WriteByte(byte(tagDataIn))
			writeU32(buf, uint32(len(a.Data)))
			buf.Write(a.Data)
		} else {
			buf.WriteByte(byte(tagDataOut))
			writeU64(buf, a.Len)
		}
	case GroupArg:
		buf.WriteByte(byte(tagGroup))
		writeU32(buf, uint32(len(a.Elems)))
		for _, e := range a.Elems {
			marshalArg(buf, e)
		}
	case ResultArg:
		if a.Kind == ResultRef {
			buf.WriteByte(byte(tagResultRef))
			id, _ := a.Ref.MarshalBinary()
			buf.Write(id)
		} else {
			buf.WriteByte(byte(tagResultLiteral))
			writeU64(buf, a.Value)
		}
	default:
		invariant("marshalArg: unknown arg type %T", arg)
	}
}

// Unmarshal parses bytes produced by Marshal back into a Prog sharing meta.
func Unmarshal(meta *Metadata, data []byte) (*Prog, error) {
	r := bytes.NewReader(data)
	count, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("prog: unmarshal call count: %w", err)
	}
	calls := make([]*Call, 0, count)
	for i := uint32(0); i < count; i++ {
		c, err := unmarshalCall(r)
		if err != nil {
			return nil, fmt.Errorf("prog: unmarshal call %d: %w", i, err)
		}
		calls = append(calls, c)
	}
	return &Prog{Metadata: meta, Calls: calls}, nil
}

func unmarshalCall(r *bytes.Reader) (*Call, error) {
	nr, err := readU32(r)
	if err != nil {
		return nil, err
	}
	hasResult, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var result *uuid.UUID
	if hasResult == 1 {
		var idBytes [16]byte
		if _, err := r.Read(idBytes[:]); err != nil {
			return nil, err
		}
		id, err := uuid.FromBytes(idBytes[:])
		if err != nil {
			return nil, err
		}
		result = &id
	}
	argCount, err := readU32(r)
	if err != nil {
		return nil, err
	}
	args := make([]Arg, 0, argCount)
	for i := uint32(0); i < argCount; i++ {
		a, err := unmarshalArg(r)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return &Call{Nr: int(nr), Args: args, Result: result}, nil
}

func unmarshalArg(r *bytes.Reader) (Arg, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch argTag(tagByte) {
	case tagConst:
		v, err := readU64(r)
		return ConstArg{Val: v}, err
	case tagPointerAddr:
		v, err := readU64(r)
		return PointerArg{Kind: PointerAddr, Addr: v}, err
	case tagPointerData:
		inner, err := unmarshalArg(r)
		if err != nil {
			return nil, err
		}
		return PointerArg{Kind: PointerData, Data: inner}, nil
	case tagDataIn:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		data := make([]byte, n)
		if _, err := r.Read(data); err != nil {
			return nil, err
		}
		return DataArg{Kind: DataIn, Data: data}, nil
	case tagDataOut:
		v, err := readU64(r)
		return DataArg{Kind: DataOut, Len: v}, err
	case tagGroup:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		elems := make([]Arg, 0, n)
		for i := uint32(0); i < n; i++ {
			e, err := unmarshalArg(r)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return GroupArg{Elems: elems}, nil
	case tagResultRef:
		var idBytes [16]byte
		if _, err := r.Read(idBytes[:]); err != nil {
			return nil, err
		}
		id, err := uuid.FromBytes(idBytes[:])
		if err != nil {
			return nil, err
		}
		return ResultArg{Kind: ResultRef, Ref: id}, nil
	case tagResultLiteral:
		v, err := readU64(r)
		return ResultArg{Kind: ResultLiteral, Value: v}, err
	default:
		return nil, fmt.Errorf("prog: unknown arg tag %d", tagByte)
	}
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
