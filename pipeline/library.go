package pipeline

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
)

// Key is the application-visible lookup key for a stored pipeline (spec
// §3 "key ∈ {Name(Vec<u16>) | InternalHash(u64)}"). Exactly one of Name
// or Hash is meaningful, selected by IsHash.
type Key struct {
	Name   string
	Hash   uint64
	IsHash bool
}

// NameKey builds a name-keyed lookup key.
func NameKey(name string) Key { return Key{Name: name} }

// HashKey builds an internal-hash-keyed lookup key (spec §3 "supports
// internal hashes in internal-keys mode").
func HashKey(hash uint64) Key { return Key{Hash: hash, IsHash: true} }

// HotPipelineRef is the retained driver-level pipeline object a Library
// entry may cache alongside its blob (spec §3 "retained_state:
// Option<HotPipelineRef>"). The core has no driver to create one of
// these; callers install whatever their backend's compiled-pipeline
// handle is.
type HotPipelineRef struct {
	Handle any
}

// entry is one stored pso_map value (spec §3 "value = (blob, is_new,
// retained_state)").
type entry struct {
	blob   []byte
	isNew  bool
	hotRef atomic.Pointer[HotPipelineRef]
}

// StageInput is one shader stage's contribution to a stored pipeline:
// its SPIR-V words (for the internal spirv_cache) and the DXBC bytes
// its compat-record hash is derived from.
type StageInput struct {
	SPIRV []uint32
	DXBC  []byte
}

// StoreInput bundles everything StorePipeline needs to build a
// pipeline's compat record and blob.
type StoreInput struct {
	State             StateDesc
	RootSignatureHash uint64
	Stages            [MaxStages]StageInput
	DriverCache       []byte
}

// Library is the pipeline-state cache/library (spec §4.8): an
// application-visible name/hash-keyed map plus two internal content-
// addressed de-duplication stores, backed by an optional on-disk
// background worker.
type Library struct {
	cfg Config

	mu     sync.RWMutex
	psoMap map[Key]*entry
	stores *internalStores
	worker *worker
}

// NewLibrary constructs a Library from an immutable Config (spec §9).
// The background worker is not started; call StartWorker to enable
// on-disk persistence.
func NewLibrary(cfg Config) *Library {
	return &Library{
		cfg:    cfg,
		psoMap: make(map[Key]*entry),
		stores: newInternalStores(),
	}
}

// StorePipeline de-duplicates each stage's SPIR-V and the driver-cache
// blob into the internal stores (spec §4.8 "Internal de-duplication"),
// builds the application-visible blob carrying only link chunks plus
// the compat record, and installs it in pso_map under key. A duplicate
// name fails with *invalid argument* (spec §4.8 "Failure modes").
func (l *Library) StorePipeline(key Key, in StoreInput) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.psoMap[key]; exists {
		return errInvalid("pipeline.StorePipeline", "duplicate name")
	}

	var stageDXBC [][]byte
	for _, s := range in.Stages {
		stageDXBC = append(stageDXBC, s.DXBC)
	}
	compat := NewCompatRecord(in.State, in.RootSignatureHash, stageDXBC)

	l.stores.mu.Lock()
	var chunks []Chunk
	for i, s := range in.Stages {
		if s.SPIRV == nil {
			continue
		}
		hash := storeSPIRV(l.stores.spirvCache, s.SPIRV)
		chunks = append(chunks, Chunk{Type: chunkTypeSPIRVLink, StageIndex: uint16(i), Data: encodeU64(hash)})
	}
	if in.DriverCache != nil {
		hash := l.stores.driverCache.insert(in.DriverCache)
		chunks = append(chunks, Chunk{Type: chunkTypePipelineCacheLink, Data: encodeU64(hash)})
	}
	l.stores.mu.Unlock()

	chunks = append(chunks, Chunk{Type: chunkTypeCompatRecord, Data: EncodeCompatRecord(compat)})

	blob := BuildBlob(l.cfg, chunks)
	l.psoMap[key] = &entry{blob: blob, isNew: true}
	if l.worker != nil {
		l.worker.enqueue(storedPipeline{stages: in.Stages, driverCache: in.DriverCache})
	}
	return nil
}

// LoadPipeline returns the stored blob for key if its compat record
// matches want byte-exactly (spec §4.8 "on load, all three must match
// byte-exactly or the library returns invalid argument").
func (l *Library) LoadPipeline(key Key, want CompatRecord) ([]byte, error) {
	l.mu.RLock()
	e, ok := l.psoMap[key]
	l.mu.RUnlock()
	if !ok {
		return nil, errInvalid("pipeline.LoadPipeline", "no pipeline stored under key")
	}

	chunks, err := ParseBlob(e.blob, l.cfg)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.Type != chunkTypeCompatRecord {
			continue
		}
		got, err := DecodeCompatRecord(c.Data)
		if err != nil {
			return nil, err
		}
		if !got.Equal(want) {
			return nil, errInvalid("pipeline.LoadPipeline", "compat-record mismatch")
		}
		return e.blob, nil
	}
	return nil, errDriverMismatch("pipeline.LoadPipeline", "missing compat record")
}

// StartWorker enables on-disk persistence: it runs the startup merge/
// replay sequence (spec §4.8 steps 1-2), then launches the background
// goroutine that services newly stored pipelines (step 4).
func (l *Library) StartWorker() error {
	w, err := newWorker(l.stores, l.cfg)
	if err != nil {
		return err
	}
	l.worker = w
	w.Start()
	return nil
}

// StopWorker signals cancellation and blocks until the background
// worker has flushed and torn down its file handles (spec §4.8 step 5).
// No-op if the worker was never started.
func (l *Library) StopWorker() {
	if l.worker != nil {
		l.worker.Stop()
	}
}

// Flush synchronously drains the worker's pending queue, for tests that
// need deterministic persistence without waiting on the one-second
// background timeout.
func (l *Library) Flush() {
	if l.worker != nil {
		l.worker.Flush()
	}
}

// HotRef returns the entry's cached HotPipelineRef, installing create's
// result if none exists yet. Concurrent callers race on the same
// compare-and-swap; the loser's instance is simply discarded by the
// caller (spec §4.8 Concurrency: "losing threads release their
// instance").
func (l *Library) HotRef(key Key, create func() (*HotPipelineRef, error)) (*HotPipelineRef, error) {
	l.mu.RLock()
	e, ok := l.psoMap[key]
	l.mu.RUnlock()
	if !ok {
		return nil, errInvalid("pipeline.HotRef", "no pipeline stored under key")
	}

	if existing := e.hotRef.Load(); existing != nil {
		return existing, nil
	}
	created, err := create()
	if err != nil {
		return nil, err
	}
	if e.hotRef.CompareAndSwap(nil, created) {
		return created, nil
	}
	return e.hotRef.Load(), nil
}

// ResolveSPIRV follows a SPIR-V link chunk back to its de-duplicated
// words in the internal spirv_cache.
func (l *Library) ResolveSPIRV(c Chunk) ([]uint32, bool, error) {
	if c.Type != chunkTypeSPIRVLink {
		return nil, false, errInvalid("pipeline.ResolveSPIRV", "not a SPIR-V link chunk")
	}
	l.stores.mu.RLock()
	defer l.stores.mu.RUnlock()
	return loadSPIRV(l.stores.spirvCache, decodeU64(c.Data))
}

// ResolveDriverCache follows a pipeline-cache link chunk back to its
// de-duplicated bytes in the internal driver_cache.
func (l *Library) ResolveDriverCache(c Chunk) ([]byte, bool, error) {
	if c.Type != chunkTypePipelineCacheLink {
		return nil, false, errInvalid("pipeline.ResolveDriverCache", "not a driver-cache link chunk")
	}
	l.stores.mu.RLock()
	defer l.stores.mu.RUnlock()
	return l.stores.driverCache.load(decodeU64(c.Data))
}

func encodeU64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func decodeU64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}
