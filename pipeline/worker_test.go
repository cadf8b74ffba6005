package pipeline

import "testing"

func TestWorker_PersistsAndReplaysAcrossRestart(t *testing.T) {
	cfg := testConfig()
	cfg.CachePath = t.TempDir()
	cfg.AppName = "testapp"

	lib := NewLibrary(cfg)
	if err := lib.StartWorker(); err != nil {
		t.Fatalf("StartWorker: %v", err)
	}

	in := StoreInput{
		RootSignatureHash: 1,
		Stages:            [MaxStages]StageInput{{SPIRV: []uint32{1, 2, 3}}},
		DriverCache:       []byte("driver-bytes"),
	}
	if err := lib.StorePipeline(NameKey("vs"), in); err != nil {
		t.Fatalf("StorePipeline: %v", err)
	}
	lib.Flush()
	lib.StopWorker()

	lib2 := NewLibrary(cfg)
	if err := lib2.StartWorker(); err != nil {
		t.Fatalf("second StartWorker: %v", err)
	}
	defer lib2.StopWorker()

	spirvHash := storeSPIRV(newInternalStore(), in.Stages[0].SPIRV)
	lib2.stores.mu.RLock()
	_, ok, err := lib2.stores.spirvCache.load(spirvHash)
	lib2.stores.mu.RUnlock()
	if err != nil {
		t.Fatalf("load replayed SPIR-V: %v", err)
	}
	if !ok {
		t.Fatalf("expected replayed SPIR-V entry to survive worker restart")
	}
}

func TestWorker_DegradesGracefullyWhenWriteCacheLocked(t *testing.T) {
	cfg := testConfig()
	cfg.CachePath = t.TempDir()

	lib := NewLibrary(cfg)
	if err := lib.StartWorker(); err != nil {
		t.Fatalf("StartWorker: %v", err)
	}
	defer lib.StopWorker()

	lib2 := NewLibrary(cfg)
	if err := lib2.StartWorker(); err != nil {
		t.Fatalf("second StartWorker should degrade gracefully, not error: %v", err)
	}
	defer lib2.StopWorker()

	if err := lib2.StorePipeline(NameKey("x"), StoreInput{}); err != nil {
		t.Fatalf("StorePipeline on degraded worker: %v", err)
	}
	lib2.Flush() // must not panic even though writeFile is nil
}
