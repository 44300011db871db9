package core

import (
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records kept in the key-value store.
var (
	IndexEntryMUS = indexEntryMUS{}
	CheckpointMUS = checkpointMUS{}
)

type indexEntryMUS struct{}

func (s indexEntryMUS) Marshal(v IndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocId, bs)
	n += ord.String.Marshal(string(v.SourceId), bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += ord.String.Marshal(v.ContentHash, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalMetadata(v.Metadata, bs[n:])
	return n + marshalTime(v.InsertedAt, bs[n:])
}

func (s indexEntryMUS) Unmarshal(bs []byte) (v IndexEntry, n int, err error) {
	var n1 int
	if v.DocId, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var sourceID string
	if sourceID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	v.SourceId = ID(sourceID)
	n += n1
	if v.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Metadata, n1, err = unmarshalMetadata(bs[n:]); err != nil {
		return
	}
	n += n1
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s indexEntryMUS) Size(v IndexEntry) (size int) {
	size = ord.String.Size(v.DocId)
	size += ord.String.Size(string(v.SourceId))
	size += ord.String.Size(v.Text)
	size += ord.String.Size(v.ContentHash)
	size += sizeVector(v.Vector)
	size += sizeMetadata(v.Metadata)
	return size + sizeTime(v.InsertedAt)
}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.Stage, bs)
	n += ord.String.Marshal(v.RunID, bs[n:])
	n += varint.Int.Marshal(v.Items, bs[n:])
	n += varint.Int.Marshal(v.Added, bs[n:])
	return n + marshalTime(v.CompletedAt, bs[n:])
}

func (s checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	if v.Stage, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.RunID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Items, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Added, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.CompletedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s checkpointMUS) Size(v Checkpoint) (size int) {
	size = ord.String.Size(v.Stage)
	size += ord.String.Size(v.RunID)
	size += varint.Int.Size(v.Items)
	size += varint.Int.Size(v.Added)
	return size + sizeTime(v.CompletedAt)
}

// Vectors are a length prefix followed by fixed width floats.

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	var length, n1 int
	if length, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if length < 0 || length > len(bs) {
		return nil, n, ErrCorruptRecord
	}
	v = make([]float32, length)
	for i := range v {
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

// Metadata is written in key order so equal maps encode to equal bytes.

func marshalMetadata(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	for _, k := range sortedKeys(m) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return
}

func unmarshalMetadata(bs []byte) (m map[string]string, n int, err error) {
	var length, n1 int
	if length, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if length < 0 || length > len(bs) {
		return nil, n, ErrCorruptRecord
	}
	m = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var k, val string
		if k, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		if val, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		m[k] = val
	}
	return
}

func sizeMetadata(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, val := range m {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Times are stored as UTC microseconds; the zero time is stored as 0.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicros(t), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	var micros int64
	if micros, n, err = varint.Int64.Unmarshal(bs); err != nil {
		return
	}
	if micros != 0 {
		t = time.UnixMicro(micros).UTC()
	}
	return
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeToMicros(t))
}

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}
