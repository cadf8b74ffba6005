package pipeline

import (
	"sync"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

// wrapInternalBlob builds the internal blob structure spec §4.8 names
// ("(checksum, data)") and returns it alongside the FNV-1 hash of the
// wrapped bytes — the key every internal store uses.
func wrapInternalBlob(data []byte) (wrapped []byte, hash uint64) {
	w := dxbc.NewWriter()
	w.WriteU64(hashBytes(data))
	w.WriteBytes(data)
	wrapped = w.Bytes()
	return wrapped, hashBytes(wrapped)
}

// unwrapInternalBlob reverses wrapInternalBlob, verifying the inner
// checksum.
func unwrapInternalBlob(wrapped []byte) ([]byte, error) {
	r := dxbc.NewReader(wrapped)
	checksum, err := r.ReadU64()
	if err != nil {
		return nil, errInvalid("pipeline.unwrapInternalBlob", "truncated blob")
	}
	data := wrapped[r.Offset():]
	if hashBytes(data) != checksum {
		return nil, errDriverMismatch("pipeline.unwrapInternalBlob", "internal blob checksum mismatch")
	}
	return data, nil
}

// internalStore is one content-addressed de-duplication store — either
// spirv_cache or driver_cache (spec §3 "two internal stores ... use
// only internal hashes"). Guarded by the library's shared
// internalHashmapMutex (spec §4.8 "Concurrency"), so this type itself
// holds no lock; callers serialise access.
type internalStore struct {
	blobs map[uint64][]byte // hash -> wrapped (checksum, data)
}

func newInternalStore() *internalStore {
	return &internalStore{blobs: make(map[uint64][]byte)}
}

// insert stores raw payload bytes under its wrapped-blob hash unless an
// entry already exists there — "the first successful insertion wins"
// (spec §5) — and returns the hash either way.
func (s *internalStore) insert(data []byte) uint64 {
	wrapped, hash := wrapInternalBlob(data)
	if _, exists := s.blobs[hash]; !exists {
		s.blobs[hash] = wrapped
	}
	return hash
}

// insertWrapped installs an already-wrapped blob read back from the
// stream archive under hash, first-writer-wins, reporting whether this
// call was the one that inserted it.
func (s *internalStore) insertWrapped(hash uint64, wrapped []byte) bool {
	if _, exists := s.blobs[hash]; exists {
		return false
	}
	s.blobs[hash] = wrapped
	return true
}

func (s *internalStore) load(hash uint64) ([]byte, bool, error) {
	wrapped, ok := s.blobs[hash]
	if !ok {
		return nil, false, nil
	}
	data, err := unwrapInternalBlob(wrapped)
	if err != nil {
		return nil, true, err
	}
	return data, true, nil
}

func (s *internalStore) wrappedBytes(hash uint64) ([]byte, bool) {
	w, ok := s.blobs[hash]
	return w, ok
}

func (s *internalStore) forEach(fn func(hash uint64, wrapped []byte)) {
	for hash, wrapped := range s.blobs {
		fn(hash, wrapped)
	}
}

// storeSPIRV varint-encodes words (spec §4.8 "Internal de-duplication":
// SPIR-V is varint-encoded before wrapping) and inserts it.
func storeSPIRV(store *internalStore, words []uint32) uint64 {
	return store.insert(EncodeSPIRVVarint(words))
}

// loadSPIRV reverses storeSPIRV.
func loadSPIRV(store *internalStore, hash uint64) ([]uint32, bool, error) {
	data, ok, err := store.load(hash)
	if err != nil || !ok {
		return nil, ok, err
	}
	words, err := DecodeSPIRVVarint(data)
	return words, true, err
}

// internalStores bundles the two content-addressed stores under one
// lock, matching spec §4.8/§5's single internalHashmapMutex guarding
// both spirv_cache and driver_cache.
type internalStores struct {
	mu          sync.RWMutex
	spirvCache  *internalStore
	driverCache *internalStore
}

func newInternalStores() *internalStores {
	return &internalStores{
		spirvCache:  newInternalStore(),
		driverCache: newInternalStore(),
	}
}
