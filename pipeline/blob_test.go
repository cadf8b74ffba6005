package pipeline

import "testing"

func testConfig() Config {
	return Config{VendorID: 0x10de, DeviceID: 0x1234, BuildTag: 42, ShaderInterfaceKey: 7, UUID: [16]byte{1, 2, 3}}
}

func TestBuildParseBlob_RoundTrips(t *testing.T) {
	cfg := testConfig()
	compat := NewCompatRecord(StateDesc{}, 1, nil)
	chunks := []Chunk{
		{Type: chunkTypeSPIRVLink, StageIndex: 0, Data: encodeU64(99)},
		{Type: chunkTypeCompatRecord, Data: EncodeCompatRecord(compat)},
	}
	blob := BuildBlob(cfg, chunks)

	got, err := ParseBlob(blob, cfg)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("chunk count mismatch: got %d want %d", len(got), len(chunks))
	}
	if got[0].Type != chunkTypeSPIRVLink || got[0].StageIndex != 0 {
		t.Fatalf("first chunk mangled: %+v", got[0])
	}
}

func TestParseBlob_RejectsVendorMismatch(t *testing.T) {
	cfg := testConfig()
	compat := NewCompatRecord(StateDesc{}, 1, nil)
	blob := BuildBlob(cfg, []Chunk{{Type: chunkTypeCompatRecord, Data: EncodeCompatRecord(compat)}})

	other := cfg
	other.VendorID = 0xffff
	if _, err := ParseBlob(blob, other); err == nil {
		t.Fatalf("expected adapter mismatch error")
	}
}

func TestParseBlob_RejectsMissingCompatRecord(t *testing.T) {
	cfg := testConfig()
	blob := BuildBlob(cfg, []Chunk{{Type: chunkTypeSPIRVLink, Data: encodeU64(1)}})
	if _, err := ParseBlob(blob, cfg); err == nil {
		t.Fatalf("expected missing-compat-record error")
	}
}

func TestParseBlob_RejectsChecksumTampering(t *testing.T) {
	cfg := testConfig()
	compat := NewCompatRecord(StateDesc{}, 1, nil)
	blob := BuildBlob(cfg, []Chunk{{Type: chunkTypeCompatRecord, Data: EncodeCompatRecord(compat)}})
	blob[len(blob)-1] ^= 0xff
	if _, err := ParseBlob(blob, cfg); err == nil {
		t.Fatalf("expected checksum mismatch error")
	}
}
