package spirv

import (
	"encoding/binary"
	"testing"
)

func TestBuilder_MinimalModule(t *testing.T) {
	b := NewBuilder(ExecutionModelGLCompute, "main")
	b.SetLocalSize(8, 8, 1)
	b.FinishFunction()
	data := b.Build()

	if len(data) < 20 {
		t.Fatalf("module too small: got %d bytes, want at least 20", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicNumber {
		t.Errorf("invalid magic: got 0x%08X, want 0x%08X", magic, MagicNumber)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != Version1_0.word() {
		t.Errorf("invalid version: got 0x%08X, want 0x%08X", version, Version1_0.word())
	}
	bound := binary.LittleEndian.Uint32(data[12:16])
	if bound == 0 {
		t.Error("bound should be > 0")
	}
	if schema := binary.LittleEndian.Uint32(data[16:20]); schema != 0 {
		t.Errorf("schema should be 0, got %d", schema)
	}
}

func TestBuilder_TypeDeduplication(t *testing.T) {
	b := NewBuilder(ExecutionModelFragment, "main")

	f32a := b.TypeID(ComponentFloat, 1)
	f32b := b.TypeID(ComponentFloat, 1)
	if f32a != f32b {
		t.Errorf("scalar float type not deduplicated: %d != %d", f32a, f32b)
	}

	vec4a := b.TypeID(ComponentFloat, 4)
	vec4b := b.TypeID(ComponentFloat, 4)
	if vec4a != vec4b {
		t.Errorf("vec4 type not deduplicated: %d != %d", vec4a, vec4b)
	}
	if vec4a == f32a {
		t.Errorf("vec4 and scalar float got the same id")
	}

	i32 := b.TypeID(ComponentInt, 1)
	u32 := b.TypeID(ComponentUint, 1)
	if i32 == u32 {
		t.Errorf("signed and unsigned int share a type id")
	}
}

func TestBuilder_VoidVectorRejected(t *testing.T) {
	b := NewBuilder(ExecutionModelVertex, "main")
	if id := b.TypeID(ComponentVoid, 4); id != 0 {
		t.Errorf("vector of void should be rejected, got id %d", id)
	}
}

func TestBuilder_CapabilityBit(t *testing.T) {
	b := NewBuilder(ExecutionModelVertex, "main")
	b.FinishFunction()
	data := b.Build()

	// The bootstrap for a Vertex entry point auto-enables Shader; the
	// emitted module must contain exactly one OpCapability instruction
	// somewhere after the 5-word header.
	found := 0
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	for i := 5; i < len(words); {
		op := OpCode(words[i] & 0xFFFF)
		wc := int(words[i] >> 16)
		if op == OpCapability {
			found++
		}
		i += wc
	}
	if found != 1 {
		t.Errorf("expected exactly 1 OpCapability, found %d", found)
	}
}

func TestBuilder_LocalVariablePlacement(t *testing.T) {
	b := NewBuilder(ExecutionModelGLCompute, "main")
	f32 := b.TypeID(ComponentFloat, 1)
	vec4f := b.TypeID(ComponentFloat, 4)
	ptr := b.PointerType(StorageClassFunction, vec4f)
	local := b.LocalVariable(ptr)
	if local == 0 {
		t.Fatal("expected non-zero local variable id")
	}
	_ = f32
	b.FinishFunction()
	data := b.Build()
	if len(data) == 0 {
		t.Fatal("expected non-empty module")
	}
}

func TestBuilder_EntryPointInterface(t *testing.T) {
	b := NewBuilder(ExecutionModelFragment, "main")
	v := b.Variable(b.PointerType(StorageClassInput, b.TypeID(ComponentFloat, 4)), StorageClassInput)
	b.AddInterface(v)
	b.FinishFunction()
	data := b.Build()
	if len(data) == 0 {
		t.Fatal("expected non-empty module")
	}
}
