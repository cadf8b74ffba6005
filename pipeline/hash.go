package pipeline

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// newContentHash returns the FNV-1-64 accumulator spec.md names for
// compat-record and checksum hashing ("FNV-1-64 rolled over every
// field", "FNV-1 of the data") — plain FNV-1, not FNV-1a, per the
// spec's own wording, unlike gogpu-gg's hashBytes (FNV-1a) which this
// package's write-field-at-a-time idiom is otherwise grounded on.
func newContentHash() hash.Hash64 { return fnv.New64() }

// hashBytes is the one-shot FNV-1-64 of a raw byte slice, used for
// per-stage DXBC content hashes, pipeline-blob checksums and internal-
// blob hashes.
func hashBytes(data []byte) uint64 {
	h := newContentHash()
	_, _ = h.Write(data)
	return h.Sum64()
}

func hashWriteU32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteU64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

// hashWriteString hashes a string byte-wise (spec §4.8 "string fields
// hashed byte-wise"), length-prefixed so "ab"+"c" cannot collide with
// "a"+"bc".
func hashWriteString(h hash.Hash64, s string) {
	hashWriteU32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

// mixHash combines a running hash with a stage index (spec §4.8
// "per-stage content hash ... each mixed with the stage index to
// disambiguate stage ordering").
func mixHash(content uint64, stageIndex int) uint64 {
	h := newContentHash()
	hashWriteU64(h, content)
	hashWriteU32(h, uint32(stageIndex))
	return h.Sum64()
}

// archiveChecksum is the FNV-1 checksum of a stream-archive record
// (spec §3 "the checksum is the FNV-1 of the data combined with hash,
// size and type").
func archiveChecksum(recordHash uint64, size, recordType uint32, data []byte) uint64 {
	h := newContentHash()
	hashWriteU64(h, recordHash)
	hashWriteU32(h, size)
	hashWriteU32(h, recordType)
	_, _ = h.Write(data)
	return h.Sum64()
}
