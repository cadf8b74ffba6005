package vkd3dshader

import (
	"testing"

	"github.com/gogpu/vkd3d-shader/dxbc"
	"github.com/gogpu/vkd3d-shader/spirv"
	"github.com/gogpu/vkd3d-shader/tpf"
)

// fixedReader hands a caller-supplied instruction slice to CompileTPF
// one at a time, the simplest possible tpf.InstructionReader — it
// ignores blob and uses the cursor as an index into instructions,
// matching this package's external-token-reader
// contract (spec §6) without inventing a real TPF binary decoder.
type fixedReader struct {
	instructions []tpf.Instruction
}

func (r *fixedReader) ReadHeader(blob []byte) (uint32, int, error) {
	return 1, 0, nil
}

func (r *fixedReader) AtEnd(blob []byte, cursor int) bool {
	return cursor >= len(r.instructions)
}

func (r *fixedReader) ReadInstruction(blob []byte, cursor int) (tpf.Instruction, int, error) {
	return r.instructions[cursor], cursor + 1, nil
}

func minimalComputeProgram() *fixedReader {
	return &fixedReader{instructions: []tpf.Instruction{
		{HandlerIdx: tpf.HandlerDclThreadGroup, ThreadGroupSize: [3]uint32{8, 8, 1}},
		{HandlerIdx: tpf.HandlerDclTemps, TempCount: 1},
		{HandlerIdx: tpf.HandlerRet},
	}}
}

func TestCompileTPF_ProducesSPIRVModule(t *testing.T) {
	reader := minimalComputeProgram()
	words, err := CompileTPF([]byte{0, 0, 0}, CompileOptions{
		ExecutionModel: spirv.ExecutionModelGLCompute,
		EntryPoint:     "main",
		Reader:         reader,
	})
	if err != nil {
		t.Fatalf("CompileTPF: %v", err)
	}
	if len(words) == 0 {
		t.Fatalf("expected non-empty SPIR-V module")
	}
}

func TestCompileTPF_RequiresReader(t *testing.T) {
	if _, err := CompileTPF([]byte{1}, CompileOptions{}); err == nil {
		t.Fatalf("expected error when no InstructionReader is supplied")
	}
}

func TestCompile_SourceTPF(t *testing.T) {
	blob, err := Compile(SourceBlob{Kind: SourceTPF, Data: []byte{0, 0, 0}}, CompileOptions{
		ExecutionModel: spirv.ExecutionModelGLCompute,
		Reader:         minimalComputeProgram(),
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if blob.Kind != TargetSPIRV || len(blob.Data) == 0 {
		t.Fatalf("unexpected code blob: %+v", blob)
	}
}

func TestParseDXBC_ExtractsRootSignature(t *testing.T) {
	rsPayload := []byte{
		1, 0, 0, 0, // version 1_0
		0, 0, 0, 0, // num parameters
		0, 0, 0, 0, // parameters offset
		0, 0, 0, 0, // num static samplers
		0, 0, 0, 0, // samplers offset
		0, 0, 0, 0, // flags
	}
	container, err := dxbc.Build([]dxbc.Chunk{{Tag: "RTS0", Payload: rsPayload}})
	if err != nil {
		t.Fatalf("dxbc.Build: %v", err)
	}

	pc, err := ParseDXBC(container)
	if err != nil {
		t.Fatalf("ParseDXBC: %v", err)
	}
	if pc.RootSignature == nil {
		t.Fatalf("expected an extracted RTS0 payload")
	}

	rs, err := ParseRootSignature(pc.RootSignature)
	if err != nil {
		t.Fatalf("ParseRootSignature: %v", err)
	}
	if rs == nil {
		t.Fatalf("expected a parsed root signature")
	}
}

func TestCompile_SourceDXIL_RequiresDelegate(t *testing.T) {
	if _, err := Compile(SourceBlob{Kind: SourceDXIL, Data: []byte("dxil")}, CompileOptions{}); err == nil {
		t.Fatalf("expected error when no DXIL delegate is configured")
	}
}

func TestCompile_UnknownSourceKind(t *testing.T) {
	if _, err := Compile(SourceBlob{Kind: SourceKind(99)}, CompileOptions{}); err == nil {
		t.Fatalf("expected error for unknown source kind")
	}
}
