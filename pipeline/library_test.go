package pipeline

import "testing"

func TestStoreLoadPipeline_RoundTrips(t *testing.T) {
	lib := NewLibrary(testConfig())
	in := StoreInput{
		State:             StateDesc{Blend: []byte("b")},
		RootSignatureHash: 0x42,
		Stages:            [MaxStages]StageInput{{SPIRV: []uint32{1, 2, 3}, DXBC: []byte("vs-bytes")}},
	}
	key := NameKey("main-vs")
	if err := lib.StorePipeline(key, in); err != nil {
		t.Fatalf("StorePipeline: %v", err)
	}

	var stageDXBC [][]byte
	for _, s := range in.Stages {
		stageDXBC = append(stageDXBC, s.DXBC)
	}
	want := NewCompatRecord(in.State, in.RootSignatureHash, stageDXBC)

	blob, err := lib.LoadPipeline(key, want)
	if err != nil {
		t.Fatalf("LoadPipeline: %v", err)
	}
	if len(blob) == 0 {
		t.Fatalf("expected non-empty blob")
	}
}

func TestStorePipeline_RejectsDuplicateKey(t *testing.T) {
	lib := NewLibrary(testConfig())
	key := HashKey(7)
	in := StoreInput{}
	if err := lib.StorePipeline(key, in); err != nil {
		t.Fatalf("first store: %v", err)
	}
	if err := lib.StorePipeline(key, in); err == nil {
		t.Fatalf("expected duplicate-key error")
	}
}

func TestLoadPipeline_RejectsCompatMismatch(t *testing.T) {
	lib := NewLibrary(testConfig())
	key := NameKey("ps")
	in := StoreInput{RootSignatureHash: 1}
	if err := lib.StorePipeline(key, in); err != nil {
		t.Fatalf("StorePipeline: %v", err)
	}
	wrong := NewCompatRecord(StateDesc{}, 2, nil)
	if _, err := lib.LoadPipeline(key, wrong); err == nil {
		t.Fatalf("expected compat-record mismatch error")
	}
}

func TestLoadPipeline_RejectsMissingKey(t *testing.T) {
	lib := NewLibrary(testConfig())
	if _, err := lib.LoadPipeline(NameKey("nope"), CompatRecord{}); err == nil {
		t.Fatalf("expected missing-key error")
	}
}

func TestHotRef_InstallsOnceAndReusesCachedValue(t *testing.T) {
	lib := NewLibrary(testConfig())
	key := NameKey("cs")
	if err := lib.StorePipeline(key, StoreInput{}); err != nil {
		t.Fatalf("StorePipeline: %v", err)
	}

	calls := 0
	create := func() (*HotPipelineRef, error) {
		calls++
		return &HotPipelineRef{Handle: calls}, nil
	}

	first, err := lib.HotRef(key, create)
	if err != nil {
		t.Fatalf("HotRef: %v", err)
	}
	second, err := lib.HotRef(key, create)
	if err != nil {
		t.Fatalf("HotRef: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same cached HotPipelineRef instance")
	}
	if calls != 1 {
		t.Fatalf("create should only run once, ran %d times", calls)
	}
}

func TestResolveSPIRVAndDriverCache(t *testing.T) {
	lib := NewLibrary(testConfig())
	in := StoreInput{
		Stages:      [MaxStages]StageInput{{SPIRV: []uint32{9, 8, 7}}},
		DriverCache: []byte("driver-blob"),
	}
	key := NameKey("both")
	if err := lib.StorePipeline(key, in); err != nil {
		t.Fatalf("StorePipeline: %v", err)
	}

	chunks, err := ParseBlob(lib.psoMap[key].blob, lib.cfg)
	if err != nil {
		t.Fatalf("ParseBlob: %v", err)
	}

	var sawSPIRV, sawDriver bool
	for _, c := range chunks {
		switch c.Type {
		case chunkTypeSPIRVLink:
			words, ok, err := lib.ResolveSPIRV(c)
			if err != nil || !ok {
				t.Fatalf("ResolveSPIRV: ok=%v err=%v", ok, err)
			}
			if len(words) != 3 {
				t.Fatalf("expected 3 words, got %d", len(words))
			}
			sawSPIRV = true
		case chunkTypePipelineCacheLink:
			data, ok, err := lib.ResolveDriverCache(c)
			if err != nil || !ok {
				t.Fatalf("ResolveDriverCache: ok=%v err=%v", ok, err)
			}
			if string(data) != "driver-blob" {
				t.Fatalf("got %q, want %q", data, "driver-blob")
			}
			sawDriver = true
		}
	}
	if !sawSPIRV || !sawDriver {
		t.Fatalf("missing expected link chunks: spirv=%v driver=%v", sawSPIRV, sawDriver)
	}
}
