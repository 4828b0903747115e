package corpus

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// indexRecord is the decoded form of a sidecar index record. There's no
// .fbs schema to run through flatc here, so the vtable is built and walked
// by hand in the same shape flatc's own generated Go code would produce:
// one table, fields in declaration order, vtable offsets 4, 6, 8, ...
type indexRecord struct {
	tab flatbuffers.Table
}

func getRootAsIndexRecord(buf []byte) *indexRecord {
	n := flatbuffers.GetUOffsetT(buf)
	rec := &indexRecord{}
	rec.tab.Bytes = buf
	rec.tab.Pos = n
	return rec
}

func (rec *indexRecord) Fingerprint() []byte {
	o := flatbuffers.UOffsetT(rec.tab.Offset(4))
	if o == 0 {
		return nil
	}
	return rec.tab.ByteVector(o + rec.tab.Pos)
}

func (rec *indexRecord) NumCalls() uint32 {
	o := flatbuffers.UOffsetT(rec.tab.Offset(6))
	if o == 0 {
		return 0
	}
	return rec.tab.GetUint32(o + rec.tab.Pos)
}

func (rec *indexRecord) SizeBytes() uint32 {
	o := flatbuffers.UOffsetT(rec.tab.Offset(8))
	if o == 0 {
		return 0
	}
	return rec.tab.GetUint32(o + rec.tab.Pos)
}

// BuildIndexRecord encodes a sidecar index record for a corpus entry: its
// fingerprint (redundant with the filename, but self-describing on its own)
// plus cheap-to-check shape metadata, so a corpus scan can filter entries
// without re-parsing the canonical program file.
func BuildIndexRecord(fingerprint string, numCalls, sizeBytes int) []byte {
	b := flatbuffers.NewBuilder(64)
	fp := b.CreateByteString([]byte(fingerprint))

	b.StartObject(3)
	b.PrependUOffsetTSlot(0, fp, 0)
	b.PrependUint32Slot(1, uint32(numCalls), 0)
	b.PrependUint32Slot(2, uint32(sizeBytes), 0)
	rec := b.EndObject()

	b.Finish(rec)
	return b.FinishedBytes()
}

// IndexRecord is the plain-Go decoded form of BuildIndexRecord's output.
type IndexRecord struct {
	Fingerprint string
	NumCalls    uint32
	SizeBytes   uint32
}

// ReadIndexRecord decodes a sidecar index record previously produced by
// BuildIndexRecord.
func ReadIndexRecord(buf []byte) IndexRecord {
	rec := getRootAsIndexRecord(buf)
	return IndexRecord{
		Fingerprint: string(rec.Fingerprint()),
		NumCalls:    rec.NumCalls(),
		SizeBytes:   rec.SizeBytes(),
	}
}
