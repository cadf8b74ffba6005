package pipeline

import "testing"

func TestSerializeDeserialize_RoundTrips(t *testing.T) {
	cfg := testConfig()
	lib := NewLibrary(cfg)

	nameKeyIn := StoreInput{
		RootSignatureHash: 1,
		Stages:            [MaxStages]StageInput{{SPIRV: []uint32{1, 2, 3}, DXBC: []byte("vs")}},
		DriverCache:       []byte("driver-bytes"),
	}
	if err := lib.StorePipeline(NameKey("main-vs"), nameKeyIn); err != nil {
		t.Fatalf("StorePipeline(name): %v", err)
	}
	hashKeyIn := StoreInput{RootSignatureHash: 2, Stages: [MaxStages]StageInput{{SPIRV: []uint32{9}}}}
	if err := lib.StorePipeline(HashKey(0x99), hashKeyIn); err != nil {
		t.Fatalf("StorePipeline(hash): %v", err)
	}

	data := lib.Serialize()
	reloaded, err := Deserialize(data, cfg)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if len(reloaded.psoMap) != 2 {
		t.Fatalf("expected 2 pipeline entries, got %d", len(reloaded.psoMap))
	}
	if _, ok := reloaded.psoMap[NameKey("main-vs")]; !ok {
		t.Fatalf("missing name-keyed pipeline after reload")
	}
	if _, ok := reloaded.psoMap[HashKey(0x99)]; !ok {
		t.Fatalf("missing hash-keyed pipeline after reload")
	}
}

func TestDeserialize_RejectsVendorMismatch(t *testing.T) {
	cfg := testConfig()
	lib := NewLibrary(cfg)
	data := lib.Serialize()

	other := cfg
	other.VendorID = 0xffff
	if _, err := Deserialize(data, other); err == nil {
		t.Fatalf("expected adapter mismatch error")
	}
}

func TestDeserialize_RejectsBuildTagMismatch(t *testing.T) {
	cfg := testConfig()
	lib := NewLibrary(cfg)
	data := lib.Serialize()

	other := cfg
	other.BuildTag = cfg.BuildTag + 1
	if _, err := Deserialize(data, other); err == nil {
		t.Fatalf("expected build-tag mismatch error")
	}
}

func TestUTF16LE_RoundTrips(t *testing.T) {
	for _, s := range []string{"", "main-vs", "unicode-éè"} {
		got := utf16LEString(utf16LEBytes(s))
		if got != s {
			t.Fatalf("round trip mismatch: got %q want %q", got, s)
		}
	}
}
