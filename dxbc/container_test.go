package dxbc

import (
	"errors"
	"testing"
)

func TestParse_RejectsBadMagic(t *testing.T) {
	data := make([]byte, 32)
	copy(data, []byte("XXXX"))
	err := Parse(data, func(tag string, payload, container []byte) error { return nil })
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestBuildAndParse_RoundTrip(t *testing.T) {
	chunks := []Chunk{
		{Tag: "SHEX", Payload: []byte{1, 2, 3, 4}},
		{Tag: "ISGN", Payload: []byte{5, 6, 7, 8, 9, 10}},
	}
	data, err := Build(chunks)
	if err != nil {
		t.Fatal(err)
	}

	var got []Chunk
	err = Parse(data, func(tag string, payload, container []byte) error {
		got = append(got, Chunk{Tag: tag, Payload: append([]byte(nil), payload...)})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(got), len(chunks))
	}
	for i, c := range chunks {
		if got[i].Tag != c.Tag {
			t.Errorf("chunk %d: tag %q != %q", i, got[i].Tag, c.Tag)
		}
		if string(got[i].Payload) != string(c.Payload) {
			t.Errorf("chunk %d: payload mismatch", i)
		}
	}
}

func TestParse_HandlerAbortPropagates(t *testing.T) {
	chunks := []Chunk{{Tag: "SHEX", Payload: []byte{1, 2, 3, 4}}}
	data, err := Build(chunks)
	if err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("stop")
	err = Parse(data, func(tag string, payload, container []byte) error {
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
}

func TestParse_TruncatedChunkDirectoryRejected(t *testing.T) {
	data := make([]byte, 32)
	copy(data, []byte(Magic))
	// version
	data[20], data[21], data[22], data[23] = 1, 0, 0, 0
	// total size
	data[24], data[25], data[26], data[27] = 32, 0, 0, 0
	// chunk count claims 5 chunks but buffer has no room for the offsets
	data[28], data[29], data[30], data[31] = 5, 0, 0, 0
	err := Parse(data, func(tag string, payload, container []byte) error { return nil })
	if err == nil {
		t.Fatal("expected error for truncated chunk directory")
	}
}
