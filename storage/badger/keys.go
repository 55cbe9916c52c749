package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/Uththunga/Ethos-Prompt-sub003/core"
)

// Key prefixes for different data types. Every key embeds the namespace so
// prefix scans never cross an isolation boundary.
const (
	documentPrefix   = "doc"
	chunkPrefix      = "chk"
	chunkDocPrefix   = "chkd"
	vectorPrefix     = "vec"
	vectorDimPrefix  = "vdim"
	postingPrefix    = "kwp"
	chunkTermsPrefix = "kwc"
	statsPrefix      = "kws"
	jobPrefix        = "job"
	jobDocPrefix     = "jobd"
)

// appendID appends an ID in BigEndian order so lexicographic sort follows
// numeric order.
func appendID(buf []byte, id core.ID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(buf, b[:]...)
}

// makeDocumentKey generates a key for a document record.
func makeDocumentKey(namespace string, id core.ID) []byte {
	return appendID([]byte(fmt.Sprintf("%s:%s:", documentPrefix, namespace)), id)
}

// makeDocumentScanPrefix generates the scan prefix for a namespace's documents.
func makeDocumentScanPrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentPrefix, namespace))
}

// makeChunkKey generates a key for a chunk record.
func makeChunkKey(namespace string, id core.ID) []byte {
	return appendID([]byte(fmt.Sprintf("%s:%s:", chunkPrefix, namespace)), id)
}

// makeChunkDocKey generates a composite key for the chunk-by-document index.
// Format: prefix:namespace:documentID:ordinal
func makeChunkDocKey(namespace string, documentID core.ID, ordinal int) []byte {
	buf := appendID([]byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, namespace)), documentID)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(ordinal))
	return append(buf, b[:]...)
}

// makeChunkDocScanPrefix generates the scan prefix for one document's chunks.
func makeChunkDocScanPrefix(namespace string, documentID core.ID) []byte {
	return appendID([]byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, namespace)), documentID)
}

// makeVectorKey generates a key for an embedding record.
func makeVectorKey(namespace string, chunkID core.ID) []byte {
	return appendID([]byte(fmt.Sprintf("%s:%s:", vectorPrefix, namespace)), chunkID)
}

// makeVectorScanPrefix generates the scan prefix for a namespace's vectors.
func makeVectorScanPrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorPrefix, namespace))
}

// makeVectorDimKey generates the key holding a namespace's vector dimensionality.
func makeVectorDimKey(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorDimPrefix, namespace))
}

// makePostingKey generates a key for one term posting.
// The NUL separator keeps terms containing ':' unambiguous.
func makePostingKey(namespace, term string, chunkID core.ID) []byte {
	buf := []byte(fmt.Sprintf("%s:%s:%s", postingPrefix, namespace, term))
	buf = append(buf, 0)
	return appendID(buf, chunkID)
}

// makePostingScanPrefix generates the scan prefix for one term's postings.
func makePostingScanPrefix(namespace, term string) []byte {
	buf := []byte(fmt.Sprintf("%s:%s:%s", postingPrefix, namespace, term))
	return append(buf, 0)
}

// makeChunkTermsKey generates a key for a chunk's stored term statistics.
func makeChunkTermsKey(namespace string, chunkID core.ID) []byte {
	return appendID([]byte(fmt.Sprintf("%s:%s:", chunkTermsPrefix, namespace)), chunkID)
}

// makeStatsKey generates the key holding a namespace's aggregate BM25 statistics.
func makeStatsKey(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s", statsPrefix, namespace))
}

// makeJobKey generates a key for a processing job.
func makeJobKey(jobID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobPrefix, jobID))
}

// makeJobDocKey generates a composite key for the job-by-document index.
func makeJobDocKey(namespace string, documentID core.ID, jobID string) []byte {
	buf := appendID([]byte(fmt.Sprintf("%s:%s:", jobDocPrefix, namespace)), documentID)
	buf = append(buf, ':')
	return append(buf, []byte(jobID)...)
}

// makeJobDocScanPrefix generates the scan prefix for one document's jobs.
func makeJobDocScanPrefix(namespace string, documentID core.ID) []byte {
	buf := appendID([]byte(fmt.Sprintf("%s:%s:", jobDocPrefix, namespace)), documentID)
	return append(buf, ':')
}
