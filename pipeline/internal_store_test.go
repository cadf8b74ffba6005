package pipeline

import "testing"

func TestInternalStore_InsertLoadRoundTrips(t *testing.T) {
	s := newInternalStore()
	hash := s.insert([]byte("payload"))
	got, ok, err := s.load(hash)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected load hit")
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestInternalStore_InsertIsFirstWriterWins(t *testing.T) {
	s := newInternalStore()
	h1 := s.insert([]byte("same"))
	h2 := s.insert([]byte("same"))
	if h1 != h2 {
		t.Fatalf("identical payloads should hash to the same key")
	}
	if len(s.blobs) != 1 {
		t.Fatalf("expected single de-duplicated entry, got %d", len(s.blobs))
	}
}

func TestInternalStore_InsertWrappedFirstWriterWins(t *testing.T) {
	s := newInternalStore()
	wrapped, hash := wrapInternalBlob([]byte("a"))
	if !s.insertWrapped(hash, wrapped) {
		t.Fatalf("first insertWrapped should report success")
	}
	otherWrapped, _ := wrapInternalBlob([]byte("different"))
	if s.insertWrapped(hash, otherWrapped) {
		t.Fatalf("second insertWrapped under the same hash should report failure")
	}
	got, ok := s.wrappedBytes(hash)
	if !ok || string(got) != string(wrapped) {
		t.Fatalf("store kept the later insertWrapped payload instead of the first")
	}
}

func TestInternalStore_LoadMissing(t *testing.T) {
	s := newInternalStore()
	_, ok, err := s.load(0xdeadbeef)
	if err != nil {
		t.Fatalf("load of missing hash should not error: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}

func TestInternalStore_UnwrapDetectsCorruption(t *testing.T) {
	wrapped, _ := wrapInternalBlob([]byte("hello"))
	wrapped[len(wrapped)-1] ^= 0xff
	if _, err := unwrapInternalBlob(wrapped); err == nil {
		t.Fatalf("expected checksum mismatch error")
	}
}

func TestStoreLoadSPIRV_RoundTrips(t *testing.T) {
	s := newInternalStore()
	words := []uint32{1, 2, 3, 0xffffffff}
	hash := storeSPIRV(s, words)
	got, ok, err := loadSPIRV(s, hash)
	if err != nil {
		t.Fatalf("loadSPIRV: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit")
	}
	if len(got) != len(words) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(words))
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d: got %#x want %#x", i, got[i], words[i])
		}
	}
}
