package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for values persisted in BadgerDB. Hand-maintained in the
// shape musgen emits: Marshal fills a pre-sized buffer, Unmarshal returns the
// value plus the number of consumed bytes.

var (
	IDMUS              = idMUS{}
	DocumentMUS        = documentMUS{}
	ChunkMUS           = chunkMUS{}
	EmbeddingRecordMUS = embeddingRecordMUS{}
	ProcessingJobMUS   = processingJobMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// Time is encoded as a zero flag plus microseconds since the Unix epoch.
// The flag keeps zero time.Time values round-trippable.

func marshalTime(t time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(t.IsZero(), bs)
	if t.IsZero() {
		n += varint.Int64.Marshal(0, bs[n:])
		return
	}
	n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	return
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	zero, n, err := ord.Bool.Unmarshal(bs)
	if err != nil {
		return
	}
	micro, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if !zero {
		t = time.UnixMicro(micro).UTC()
	}
	return
}

func sizeTime(t time.Time) int {
	if t.IsZero() {
		return ord.Bool.Size(true) + varint.Int64.Size(0)
	}
	return ord.Bool.Size(false) + varint.Int64.Size(t.UnixMicro())
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
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

func marshalStringMap(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	for k, v := range m {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v, bs[n:])
	}
	return
}

func unmarshalStringMap(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	m = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var (
			k, v string
			n1   int
		)
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		m[k] = v
	}
	return
}

func sizeStringMap(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return
}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Namespace, bs[n:])
	n += ord.String.Marshal(v.OwnerId, bs[n:])
	n += ord.String.Marshal(v.MimeType, bs[n:])
	n += varint.Int64.Marshal(v.ByteSize, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Namespace, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.OwnerId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.MimeType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ByteSize, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = DocumentStatus(status)
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Namespace)
	size += ord.String.Size(v.OwnerId)
	size += ord.String.Size(v.MimeType)
	size += varint.Int64.Size(v.ByteSize)
	size += varint.Int.Size(int(v.Status))
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += ord.String.Marshal(v.Namespace, bs[n:])
	n += varint.Int.Marshal(v.Ordinal, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.TokenCount, bs[n:])
	n += ord.String.Marshal(v.Strategy, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Namespace, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Strategy, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = unmarshalStringMap(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += ord.String.Size(v.Namespace)
	size += varint.Int.Size(v.Ordinal)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.TokenCount)
	size += ord.String.Size(v.Strategy)
	size += sizeStringMap(v.Metadata)
	size += sizeTime(v.InsertedAt)
	return
}

type embeddingRecordMUS struct{}

func (s embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ChunkId, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += ord.String.Marshal(v.Provider, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += marshalTime(v.GeneratedAt, bs[n:])
	return
}

func (s embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	var n1 int
	v.ChunkId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Provider, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.GeneratedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = IDMUS.Size(v.ChunkId)
	size += IDMUS.Size(v.DocumentId)
	size += sizeVector(v.Vector)
	size += ord.String.Size(v.Provider)
	size += ord.String.Size(v.Model)
	size += sizeTime(v.GeneratedAt)
	return
}

type processingJobMUS struct{}

func (s processingJobMUS) Marshal(v ProcessingJob, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += ord.String.Marshal(v.Namespace, bs[n:])
	n += varint.Int.Marshal(int(v.Stage), bs[n:])
	n += varint.Int.Marshal(len(v.Attempts), bs[n:])
	for stage, count := range v.Attempts {
		n += varint.Int.Marshal(stage, bs[n:])
		n += varint.Int.Marshal(count, bs[n:])
	}
	n += varint.Int.Marshal(len(v.Transitions), bs[n:])
	for _, tr := range v.Transitions {
		n += varint.Int.Marshal(int(tr.Stage), bs[n:])
		n += marshalTime(tr.EnteredAt, bs[n:])
	}
	n += ord.String.Marshal(v.ErrorDetail, bs[n:])
	n += ord.Bool.Marshal(v.Cancelled, bs[n:])
	n += marshalTime(v.StartedAt, bs[n:])
	n += marshalTime(v.CompletedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (s processingJobMUS) Unmarshal(bs []byte) (v ProcessingJob, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Namespace, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var stage int
	stage, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Stage = JobStage(stage)
	var attempts int
	attempts, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if attempts > 0 {
		v.Attempts = make(map[int]int, attempts)
		for i := 0; i < attempts; i++ {
			var key, count int
			key, n1, err = varint.Int.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			count, n1, err = varint.Int.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Attempts[key] = count
		}
	}
	var transitions int
	transitions, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if transitions > 0 {
		v.Transitions = make([]StageTransition, transitions)
		for i := 0; i < transitions; i++ {
			var trStage int
			trStage, n1, err = varint.Int.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Transitions[i].Stage = JobStage(trStage)
			v.Transitions[i].EnteredAt, n1, err = unmarshalTime(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.ErrorDetail, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Cancelled, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s processingJobMUS) Size(v ProcessingJob) (size int) {
	size = ord.String.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += ord.String.Size(v.Namespace)
	size += varint.Int.Size(int(v.Stage))
	size += varint.Int.Size(len(v.Attempts))
	for stage, count := range v.Attempts {
		size += varint.Int.Size(stage)
		size += varint.Int.Size(count)
	}
	size += varint.Int.Size(len(v.Transitions))
	for _, tr := range v.Transitions {
		size += varint.Int.Size(int(tr.Stage))
		size += sizeTime(tr.EnteredAt)
	}
	size += ord.String.Size(v.ErrorDetail)
	size += ord.Bool.Size(v.Cancelled)
	size += sizeTime(v.StartedAt)
	size += sizeTime(v.CompletedAt)
	size += sizeTime(v.UpdatedAt)
	return
}
