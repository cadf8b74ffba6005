package pipeline

import (
	"testing"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

func TestArchiveRecord_RoundTrips(t *testing.T) {
	w := dxbc.NewWriter()
	appendArchiveRecord(w, 0x123, archiveRecordSPIRV, []byte("spirv-payload"))
	appendArchiveRecord(w, 0x456, archiveRecordDriverCache, []byte("driver-payload"))

	r := dxbc.NewReader(w.Bytes())
	rec1, ok := readArchiveRecord(r)
	if !ok {
		t.Fatalf("expected first record to decode")
	}
	if rec1.hash != 0x123 || rec1.recordType != archiveRecordSPIRV || string(rec1.data) != "spirv-payload" {
		t.Fatalf("unexpected first record: %+v", rec1)
	}

	rec2, ok := readArchiveRecord(r)
	if !ok {
		t.Fatalf("expected second record to decode")
	}
	if rec2.hash != 0x456 || rec2.recordType != archiveRecordDriverCache || string(rec2.data) != "driver-payload" {
		t.Fatalf("unexpected second record: %+v", rec2)
	}

	if _, ok := readArchiveRecord(r); ok {
		t.Fatalf("expected stream to be exhausted")
	}
}

func TestArchiveRecord_StopsOnCorruption(t *testing.T) {
	w := dxbc.NewWriter()
	appendArchiveRecord(w, 1, archiveRecordSPIRV, []byte("good"))
	firstRecordLen := len(w.Bytes())
	appendArchiveRecord(w, 2, archiveRecordSPIRV, []byte("corrupted"))
	full := w.Bytes()
	full[firstRecordLen] ^= 0xff // corrupt the second record's hash field, invalidating its checksum

	r := dxbc.NewReader(full)
	rec, ok := readArchiveRecord(r)
	if !ok || string(rec.data) != "good" {
		t.Fatalf("expected first good record to still decode, got ok=%v rec=%+v", ok, rec)
	}
	if _, ok := readArchiveRecord(r); ok {
		t.Fatalf("expected corrupted record to stop replay, not decode successfully")
	}
}

func TestArchiveHeader_RoundTrips(t *testing.T) {
	cfg := testConfig()
	w := dxbc.NewWriter()
	writeArchiveHeader(w, cfg)
	r := dxbc.NewReader(w.Bytes())
	if err := readArchiveHeader(r, cfg); err != nil {
		t.Fatalf("readArchiveHeader: %v", err)
	}
}

func TestArchiveHeader_RejectsMismatch(t *testing.T) {
	cfg := testConfig()
	w := dxbc.NewWriter()
	writeArchiveHeader(w, cfg)

	other := cfg
	other.BuildTag = cfg.BuildTag + 1
	r := dxbc.NewReader(w.Bytes())
	if err := readArchiveHeader(r, other); err == nil {
		t.Fatalf("expected build-tag mismatch error")
	}
}

func TestReplayArchive_InstallsIntoStores(t *testing.T) {
	w := dxbc.NewWriter()
	appendArchiveRecord(w, 0xaaa, archiveRecordSPIRV, []byte("spirv"))
	appendArchiveRecord(w, 0xbbb, archiveRecordDriverCache, []byte("driver"))

	stores := newInternalStores()
	replayArchive(w.Bytes(), stores)

	data, ok, err := stores.spirvCache.load(0xaaa)
	if err != nil || !ok || string(data) != "spirv" {
		t.Fatalf("spirv replay failed: ok=%v err=%v data=%q", ok, err, data)
	}
	data, ok, err = stores.driverCache.load(0xbbb)
	if err != nil || !ok || string(data) != "driver" {
		t.Fatalf("driver-cache replay failed: ok=%v err=%v data=%q", ok, err, data)
	}
}
