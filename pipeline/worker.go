package pipeline

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

// storedPipeline is one queued unit of work for the background worker:
// the raw stage SPIR-V and driver-cache bytes a StorePipeline call just
// de-duplicated into the in-memory internal stores, still needing to be
// appended to the on-disk write-cache.
type storedPipeline struct {
	stages      [MaxStages]StageInput
	driverCache []byte
}

// cachePaths derives the three on-disk cache paths spec §6 names:
// "<path>/vkd3d-proton[.<app-name>].cache", its ".write" companion, and
// the ".merge" scratch file.
func cachePaths(cfg Config) (read, write, merge string) {
	dir := cfg.CachePath
	if dir == "" {
		dir = "."
	}
	name := "vkd3d-proton"
	if cfg.AppName != "" {
		name += "." + cfg.AppName
	}
	base := filepath.Join(dir, name+".cache")
	return base, base + ".write", base + ".merge"
}

// worker is the single background thread servicing the on-disk stream
// archive (spec §4.8 "Background worker"). One exists per live disk-
// cache-backed Library.
type worker struct {
	cfg    Config
	stores *internalStores

	readPath, writePath, mergePath string

	mu    sync.Mutex
	cond  *sync.Cond
	queue []storedPipeline
	dirty bool

	cancel  atomic.Bool
	stopCh  chan struct{}
	stopped chan struct{}

	writeFile *os.File
	readData  []byte
}

// newWorker runs the startup merge/replay sequence (spec §4.8 steps
// 1-3) and, if nothing else has claimed the write-cache, leaves it open
// for appends.
func newWorker(stores *internalStores, cfg Config) (*worker, error) {
	read, write, merge := cachePaths(cfg)
	w := &worker{
		cfg: cfg, stores: stores,
		readPath: read, writePath: write, mergePath: merge,
		stopCh: make(chan struct{}), stopped: make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)

	if err := w.mergeAndReplay(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(write, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		// Another process owns the write-cache; the worker still
		// serves reads from the merged snapshot it just replayed, it
		// simply never appends (spec §4.8 step 3 "fails gracefully").
		return w, nil
	}
	if err := writeArchiveHeaderToFile(f, cfg); err != nil {
		f.Close()
		return nil, err
	}
	w.writeFile = f
	return w, nil
}

func writeArchiveHeaderToFile(f *os.File, cfg Config) error {
	bw := dxbc.NewWriter()
	writeArchiveHeader(bw, cfg)
	_, err := f.Write(bw.Bytes())
	return err
}

// mergeAndReplay implements spec §4.8 steps 1-2: rename any stale
// write-cache into the merge slot, de-duplicate its records against the
// existing read-cache by (hash, type) while streaming into a fresh
// merge file, atomically install it as the read-cache, then mmap it and
// replay every record into the internal stores.
func (w *worker) mergeAndReplay() error {
	if _, err := os.Stat(w.writePath); err == nil {
		if err := os.Rename(w.writePath, w.mergePath); err != nil {
			return err
		}
	}

	if _, err := os.Stat(w.mergePath); err == nil {
		if err := w.mergeInto(w.readPath, w.mergePath); err != nil {
			return err
		}
		if err := os.Rename(w.mergePath, w.readPath); err != nil {
			return err
		}
	}

	f, err := os.Open(w.readPath)
	if err != nil {
		return nil // no prior cache; nothing to replay.
	}
	defer f.Close()

	data, err := mmapReadOnly(f)
	if err != nil {
		return err
	}
	w.readData = data
	if len(data) == 0 {
		return nil
	}

	r := dxbc.NewReader(data)
	if err := readArchiveHeader(r, w.cfg); err != nil {
		// A version-mismatched or corrupt read-cache is discarded
		// rather than failing library construction.
		munmap(w.readData)
		w.readData = nil
		return nil
	}
	replayArchive(data[r.Offset():], w.stores)
	return nil
}

// mergeInto streams every well-formed record from existing (if present)
// and mergeFile into a fresh file at mergeFile's path, de-duplicating by
// (hash, type), first-writer-wins.
func (w *worker) mergeInto(existingPath, mergeFile string) error {
	seen := make(map[[2]uint64]bool) // key: {hash, type}

	out := dxbc.NewWriter()
	writeArchiveHeader(out, w.cfg)

	drain := func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		r := dxbc.NewReader(data)
		if readArchiveHeader(r, w.cfg) != nil {
			return
		}
		for {
			rec, ok := readArchiveRecord(r)
			if !ok {
				return
			}
			key := [2]uint64{rec.hash, uint64(rec.recordType)}
			if seen[key] {
				continue
			}
			seen[key] = true
			appendArchiveRecord(out, rec.hash, rec.recordType, rec.data)
			if w.cancel.Load() {
				return
			}
		}
	}
	drain(existingPath)
	drain(mergeFile)

	return os.WriteFile(mergeFile, out.Bytes(), 0o644)
}

// enqueue hands a just-stored pipeline's raw payloads to the worker for
// eventual on-disk persistence.
func (w *worker) enqueue(sp storedPipeline) {
	w.mu.Lock()
	w.queue = append(w.queue, sp)
	w.mu.Unlock()
	w.cond.Signal()
}

// run is the worker's steady-state loop (spec §4.8 step 4): wait on the
// condition variable with a one-second timeout, drain queued pipelines,
// append new internal-store records, and fflush on a dirty timeout.
func (w *worker) run() {
	defer close(w.stopped)
	for {
		w.waitForWorkOrTimeout(time.Second)
		if w.cancel.Load() {
			w.Flush()
			return
		}
		select {
		case <-w.stopCh:
			w.Flush()
			return
		default:
		}
		w.drainQueue()
		if w.dirty {
			w.flushWriteFile()
		}
	}
}

// waitForWorkOrTimeout blocks until either the queue becomes non-empty,
// stop is requested, or timeout elapses — a channel-based stand-in for
// the condition-variable-with-timeout the spec describes, since Go's
// sync.Cond has no native timeout.
func (w *worker) waitForWorkOrTimeout(timeout time.Duration) {
	woke := make(chan struct{})
	go func() {
		w.mu.Lock()
		for len(w.queue) == 0 {
			w.cond.Wait()
		}
		w.mu.Unlock()
		close(woke)
	}()
	select {
	case <-woke:
	case <-time.After(timeout):
	case <-w.stopCh:
	}
}

// drainQueue empties the pending queue into the write-cache file,
// appending one archive record per de-duplicated stage/driver-cache
// payload.
func (w *worker) drainQueue() {
	w.mu.Lock()
	pending := w.queue
	w.queue = nil
	w.mu.Unlock()

	if len(pending) == 0 || w.writeFile == nil {
		return
	}

	w.stores.mu.Lock()
	defer w.stores.mu.Unlock()

	for _, sp := range pending {
		for _, s := range sp.stages {
			if s.SPIRV == nil {
				continue
			}
			wrapped, hash := wrapInternalBlob(EncodeSPIRVVarint(s.SPIRV))
			data, err := unwrapInternalBlob(wrapped)
			if err != nil {
				continue
			}
			bw := dxbc.NewWriter()
			appendArchiveRecord(bw, hash, archiveRecordSPIRV, data)
			w.writeFile.Write(bw.Bytes())
			w.dirty = true
		}
		if sp.driverCache != nil {
			wrapped, hash := wrapInternalBlob(sp.driverCache)
			data, err := unwrapInternalBlob(wrapped)
			if err != nil {
				continue
			}
			bw := dxbc.NewWriter()
			appendArchiveRecord(bw, hash, archiveRecordDriverCache, data)
			w.writeFile.Write(bw.Bytes())
			w.dirty = true
		}
	}
}

func (w *worker) flushWriteFile() {
	if w.writeFile != nil {
		w.writeFile.Sync()
	}
	w.dirty = false
}

// Flush synchronously drains the queue and fflushes the write-cache —
// the deterministic, clock-free stand-in tests use instead of sleeping
// on the one-second timeout (SPEC_FULL.md ambient testing note).
func (w *worker) Flush() {
	w.drainQueue()
	w.flushWriteFile()
}

// Start launches the worker's background goroutine.
func (w *worker) Start() { go w.run() }

// Stop sets the cancellation flag (spec §5 "stream_archive_cancellation_point")
// and blocks until the worker has flushed and exited (spec §4.8 step 5:
// "drain the queue, close the write-cache, unmap the read-cache").
func (w *worker) Stop() {
	w.cancel.Store(true)
	close(w.stopCh)
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.stopped
	if w.writeFile != nil {
		w.writeFile.Close()
	}
	munmap(w.readData)
}
