package tpf

import (
	"math"
	"testing"

	"github.com/gogpu/vkd3d-shader/spirv"
)

func newTestCompilerWithTemps(t *testing.T, n uint32) *Compiler {
	t.Helper()
	c := NewCompiler(spirv.ExecutionModelGLCompute, "main")
	if err := c.dclTemps(Instruction{TempCount: n}); err != nil {
		t.Fatal(err)
	}
	return c
}

func float32Imm(vals ...float32) Register {
	var reg Register
	reg.Type = RegisterImmediate32
	for i, v := range vals {
		reg.Immediate[i] = math.Float32bits(v)
	}
	return reg
}

func TestMov_LoadsImmediateStoresToTemp(t *testing.T) {
	c := newTestCompilerWithTemps(t, 1)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskXYZW}},
		Src: []Operand{{Register: float32Imm(1, 2, 3, 4)}},
	}
	if err := c.mov(inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpStore); got != 1 {
		t.Errorf("expected 1 OpStore, got %d", got)
	}
}

func TestBinaryFloatOp_Add(t *testing.T) {
	c := newTestCompilerWithTemps(t, 2)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskXYZW}},
		Src: []Operand{
			{Register: Register{Type: RegisterTemp, Index: 0}},
			{Register: Register{Type: RegisterTemp, Index: 1}},
		},
	}
	if err := binaryFloatOp(HandlerAdd)(c, inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpFAdd); got != 1 {
		t.Errorf("expected 1 OpFAdd, got %d", got)
	}
}

func TestBinaryFloatOp_MinUsesExtInst(t *testing.T) {
	c := newTestCompilerWithTemps(t, 2)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskXYZW}},
		Src: []Operand{
			{Register: Register{Type: RegisterTemp, Index: 0}},
			{Register: Register{Type: RegisterTemp, Index: 1}},
		},
	}
	if err := binaryFloatOp(HandlerMin)(c, inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpExtInst); got != 1 {
		t.Errorf("expected 1 OpExtInst, got %d", got)
	}
}

func TestDotProductOp_StoresScalarResult(t *testing.T) {
	c := newTestCompilerWithTemps(t, 2)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskX}},
		Src: []Operand{
			{Register: Register{Type: RegisterTemp, Index: 0}},
			{Register: Register{Type: RegisterTemp, Index: 1}},
		},
	}
	if err := dotProductOp(3)(c, inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpDot); got != 1 {
		t.Errorf("expected 1 OpDot, got %d", got)
	}
}

func TestConvertOp_UtofEmitsConvertUToF(t *testing.T) {
	c := newTestCompilerWithTemps(t, 1)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskXYZW}},
		Src: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}}},
	}
	if err := convertOp(HandlerUtof)(c, inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpConvertUToF); got != 1 {
		t.Errorf("expected 1 OpConvertUToF, got %d", got)
	}
}

func TestBfi_MasksVariableIndexOperandsOnly(t *testing.T) {
	c := newTestCompilerWithTemps(t, 4)
	inst := Instruction{
		Dst: []Operand{{Register: Register{Type: RegisterTemp, Index: 0}, WriteMask: MaskXYZW}},
		Src: []Operand{
			{Register: Register{Type: RegisterTemp, Index: 1}}, // width, variable
			{Register: float32Imm(0)},                          // offset, literal: no mask needed
			{Register: Register{Type: RegisterTemp, Index: 2}}, // insert
			{Register: Register{Type: RegisterTemp, Index: 3}}, // base
		},
	}
	if err := c.bfi(inst); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpBitFieldInsert); got != 1 {
		t.Errorf("expected 1 OpBitFieldInsert, got %d", got)
	}
	if got := countOpcodes(data, spirv.OpBitwiseAnd); got != 1 {
		t.Errorf("expected exactly 1 masking OpBitwiseAnd (width only), got %d", got)
	}
}

func TestRet_EmitsOpReturn(t *testing.T) {
	c := newTestCompilerWithTemps(t, 0)
	if err := c.ret(Instruction{}); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpReturn); got != 1 {
		t.Errorf("expected 1 OpReturn, got %d", got)
	}
}

func TestUnsupportedResourceOp_NeverErrors(t *testing.T) {
	c := newTestCompilerWithTemps(t, 0)
	if err := c.unsupportedResourceOp(Instruction{HandlerIdx: HandlerSample}); err != nil {
		t.Fatalf("unsupported resource op must log and continue, got error: %v", err)
	}
}
