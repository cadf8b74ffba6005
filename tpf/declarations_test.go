package tpf

import (
	"testing"

	"github.com/gogpu/vkd3d-shader/spirv"
)

func TestDclTemps_AllocatesLocalVariablesWithFunctionStorage(t *testing.T) {
	c := NewCompiler(spirv.ExecutionModelGLCompute, "main")
	if err := c.dclTemps(Instruction{TempCount: 3}); err != nil {
		t.Fatal(err)
	}
	if c.tempCount != 3 {
		t.Errorf("tempCount = %d, want 3", c.tempCount)
	}
	for i := uint32(0); i < 3; i++ {
		if _, ok := c.symbols[SymbolKey{Type: RegisterTemp, Index: i}]; !ok {
			t.Errorf("temp r%d not in symbol table", i)
		}
	}

	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpVariable); got != 3 {
		t.Errorf("expected 3 OpVariable, got %d", got)
	}
}

func TestDclConstantBuffer_DecoratesBindingAndBlock(t *testing.T) {
	c := NewCompiler(spirv.ExecutionModelFragment, "main")
	inst := Instruction{ConstantBufferNo: 2, ConstantBufSize: 16, IndexedDynamic: true}
	if err := c.dclConstantBuffer(inst); err != nil {
		t.Fatal(err)
	}
	sym, ok := c.symbols[SymbolKey{Type: RegisterConstantBuffer, Index: 2}]
	if !ok {
		t.Fatal("constant buffer cb2 not registered")
	}
	if sym.ID == 0 {
		t.Error("expected non-zero constant buffer variable id")
	}

	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if got := countOpcodes(data, spirv.OpDecorate); got == 0 {
		t.Error("expected at least one OpDecorate for the constant buffer")
	}
}

func TestDclInput_RegistersLocationDecoratedVariable(t *testing.T) {
	c := NewCompiler(spirv.ExecutionModelVertex, "main")
	inst := Instruction{Dst: []Operand{{Register: Register{Type: RegisterInput, Index: 1}}}}
	if err := c.dclInput(inst); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.symbols[SymbolKey{Type: RegisterInput, Index: 1}]; !ok {
		t.Fatal("input v1 not registered")
	}
}

func TestDclInputSGV_UsesBuiltInDecoration(t *testing.T) {
	c := NewCompiler(spirv.ExecutionModelVertex, "main")
	inst := Instruction{
		Dst:            []Operand{{Register: Register{Type: RegisterInput, Index: 0}}},
		SysValSemantic: SysValVertexID,
		ComponentType:  ComponentUint,
	}
	if err := c.dclInputSGV(inst); err != nil {
		t.Fatal(err)
	}
	sym := c.symbols[SymbolKey{Type: RegisterInput, Index: 0}]
	if sym.ID == 0 {
		t.Fatal("expected registered system-value input")
	}
}

func TestDclThreadGroup_SetsLocalSize(t *testing.T) {
	c := NewCompiler(spirv.ExecutionModelGLCompute, "main")
	if err := c.dclThreadGroup(Instruction{ThreadGroupSize: [3]uint32{8, 8, 1}}); err != nil {
		t.Fatal(err)
	}
	c.Builder().FinishFunction()
	data := c.Builder().Build()
	if len(data) == 0 {
		t.Fatal("expected non-empty module")
	}
}
