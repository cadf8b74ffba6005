package pipeline

import (
	"bytes"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

// Stream-archive record types (spec §4.8 "record types mirror chunk
// types").
const (
	archiveRecordSPIRV uint32 = iota
	archiveRecordDriverCache
)

// writeArchiveHeader emits the VKS4 fixed header (spec §6 "both embed
// the vendor/device id, build tag, shader-interface key and UUID ...
// for version checks").
func writeArchiveHeader(w *dxbc.Writer, cfg Config) {
	w.WriteBytes([]byte(archiveMagic))
	w.WriteU32(cfg.VendorID)
	w.WriteU32(cfg.DeviceID)
	w.WriteU64(cfg.BuildTag)
	w.WriteU64(cfg.ShaderInterfaceKey)
	w.WriteBytes(cfg.UUID[:])
}

// readArchiveHeader validates the VKS4 fixed header against cfg.
func readArchiveHeader(r *dxbc.Reader, cfg Config) error {
	magic, err := r.ReadBytes(4)
	if err != nil || !bytes.Equal(magic, []byte(archiveMagic)) {
		return errInvalid("pipeline.readArchiveHeader", "bad magic")
	}
	vendorID, err1 := r.ReadU32()
	deviceID, err2 := r.ReadU32()
	if err1 != nil || err2 != nil {
		return errInvalid("pipeline.readArchiveHeader", "truncated header")
	}
	if vendorID != cfg.VendorID || deviceID != cfg.DeviceID {
		return errAdapterNotFound("pipeline.readArchiveHeader", "vendor/device id mismatch")
	}
	buildTag, err3 := r.ReadU64()
	key, err4 := r.ReadU64()
	uuid, err5 := r.ReadBytes(16)
	if err3 != nil || err4 != nil || err5 != nil {
		return errInvalid("pipeline.readArchiveHeader", "truncated header")
	}
	if buildTag != cfg.BuildTag || key != cfg.ShaderInterfaceKey || !bytes.Equal(uuid, cfg.UUID[:]) {
		return errDriverMismatch("pipeline.readArchiveHeader", "build tag/shader-interface-key/UUID mismatch")
	}
	return nil
}

// appendArchiveRecord encodes one stream-archive record (spec §3
// "(hash, checksum, size, type, data)") to dst.
func appendArchiveRecord(w *dxbc.Writer, hash uint64, recordType uint32, data []byte) {
	size := uint32(len(data))
	checksum := archiveChecksum(hash, size, recordType, data)
	w.WriteU64(hash)
	w.WriteU64(checksum)
	w.WriteU32(size)
	w.WriteU32(recordType)
	w.WriteBytes(data)
	w.Align8()
}

// archiveRecord is one decoded stream-archive entry.
type archiveRecord struct {
	hash       uint64
	recordType uint32
	data       []byte
}

// readArchiveRecord decodes one record at r's current cursor. ok is
// false when the stream is exhausted or the next record is malformed —
// either way the caller should stop replaying, per spec §4.8 "broken/
// truncated records end the replay without aborting" and §4.8 Failure
// modes "stream-archive corruption mid-file: silently truncate replay
// to last good record".
func readArchiveRecord(r *dxbc.Reader) (rec archiveRecord, ok bool) {
	if r.Remaining() == 0 {
		return archiveRecord{}, false
	}
	hash, err := r.ReadU64()
	if err != nil {
		return archiveRecord{}, false
	}
	checksum, err := r.ReadU64()
	if err != nil {
		return archiveRecord{}, false
	}
	size, err := r.ReadU32()
	if err != nil {
		return archiveRecord{}, false
	}
	recordType, err := r.ReadU32()
	if err != nil {
		return archiveRecord{}, false
	}
	data, err := r.ReadBytes(size)
	if err != nil {
		return archiveRecord{}, false
	}
	if archiveChecksum(hash, size, recordType, data) != checksum {
		return archiveRecord{}, false
	}
	pad := (8 - size%8) % 8
	if pad > 0 {
		if _, err := r.ReadBytes(pad); err != nil {
			return archiveRecord{}, false
		}
	}
	return archiveRecord{hash: hash, recordType: recordType, data: data}, true
}

// replayArchive decodes every well-formed record from data (a fully
// validated archive body, header already consumed) and installs it
// into the matching internal store under internalHashmapMutex (spec
// §4.8 step 2 "replay every record into the in-memory internal stores
// under their proper hash map mutex").
func replayArchive(data []byte, stores *internalStores) {
	r := dxbc.NewReader(data)
	stores.mu.Lock()
	defer stores.mu.Unlock()
	for {
		rec, ok := readArchiveRecord(r)
		if !ok {
			return
		}
		switch rec.recordType {
		case archiveRecordSPIRV:
			stores.spirvCache.insertWrapped(rec.hash, wrapArchived(rec))
		case archiveRecordDriverCache:
			stores.driverCache.insertWrapped(rec.hash, wrapArchived(rec))
		}
	}
}

// wrapArchived re-wraps a decoded archive record's payload into the
// internal blob shape internalStore.blobs expects, so replay and normal
// StorePipeline insertion produce identically-shaped entries.
func wrapArchived(rec archiveRecord) []byte {
	wrapped, _ := wrapInternalBlob(rec.data)
	return wrapped
}
