package tpf

import (
	"fmt"

	"github.com/gogpu/vkd3d-shader/spirv"
)

// dclTemps allocates n function-scope pointer-to-vec4-of-float
// variables with storage class Function; the first allocated id
// becomes temp_base, so TEMP[i] resolves to temp_base+i (spec §4.7
// "register addressing" / "Declarations").
func (c *Compiler) dclTemps(inst Instruction) error {
	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
	ptrType := c.builder.PointerType(spirv.StorageClassFunction, vec4f)

	c.tempCount = inst.TempCount
	c.tempPtr = ptrType

	for i := uint32(0); i < inst.TempCount; i++ {
		id := c.builder.LocalVariable(ptrType)
		if i == 0 {
			c.tempBase = id
		}
		c.symbols[SymbolKey{Type: RegisterTemp, Index: i}] = Symbol{ID: id, PointerType: ptrType}
		c.builder.Name(id, fmt.Sprintf("r%d", i))
	}
	return nil
}

// dclConstantBuffer builds `OpTypeArray vec4 size` decorated with
// ArrayStride 16, wraps it in an OpTypeStruct decorated Block,
// allocates a Uniform pointer variable decorated
// DescriptorSet=0/Binding=cb#, and — if the instruction's
// indexed-dynamic flag is set — enables
// UniformBufferArrayDynamicIndexing (spec §4.7 Declarations).
func (c *Compiler) dclConstantBuffer(inst Instruction) error {
	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
	uintT := c.builder.TypeID(spirv.ComponentUint, 1)
	sizeConst := c.builder.ConstantUint32(uintT, inst.ConstantBufSize)

	arrayType := c.builder.ArrayType(vec4f, sizeConst)
	c.builder.Decorate(arrayType, spirv.DecorationArrayStride, 16)

	structType := c.builder.StructType(arrayType)
	c.builder.Decorate(structType, spirv.DecorationBlock)

	ptrType := c.builder.PointerType(spirv.StorageClassUniform, structType)
	varID := c.builder.Variable(ptrType, spirv.StorageClassUniform)
	c.builder.Decorate(varID, spirv.DecorationDescriptorSet, 0)
	c.builder.Decorate(varID, spirv.DecorationBinding, inst.ConstantBufferNo)
	c.builder.Name(varID, fmt.Sprintf("cb%d_0", inst.ConstantBufferNo))

	c.symbols[SymbolKey{Type: RegisterConstantBuffer, Index: inst.ConstantBufferNo}] = Symbol{ID: varID, PointerType: ptrType}

	if inst.IndexedDynamic {
		c.builder.EnableCapability(spirv.CapabilityUniformBufferArrayDynamicIndexing)
	}
	return nil
}

// dclInput allocates an Input vec4 variable, adds it to the entry
// point interface, and decorates it with Location=reg_index (spec
// §4.7 Declarations).
func (c *Compiler) dclInput(inst Instruction) error {
	return c.declareIOVariable(inst, spirv.StorageClassInput, false)
}

// dclInputPS is DCL_INPUT_PS: identical to dclInput, but pixel-shader
// inputs carry an interpolation-mode flag; non-linear modes are logged
// as unsupported rather than rejected (spec §4.7, §9 Open Questions).
func (c *Compiler) dclInputPS(inst Instruction) error {
	if inst.InterpolationMode != InterpolationLinear {
		c.logger.Warnf("tpf: unsupported interpolation mode %d on input v%d, treating as linear", inst.InterpolationMode, regIndex(inst))
	}
	return c.declareIOVariable(inst, spirv.StorageClassInput, false)
}

// dclInputSGV allocates a system-value Input variable decorated with
// the matched BuiltIn instead of a Location, scalar if the system
// value is integral (spec §4.7).
func (c *Compiler) dclInputSGV(inst Instruction) error {
	return c.declareIOVariable(inst, spirv.StorageClassInput, true)
}

func (c *Compiler) dclOutput(inst Instruction) error {
	return c.declareIOVariable(inst, spirv.StorageClassOutput, false)
}

func (c *Compiler) dclOutputSIV(inst Instruction) error {
	return c.declareIOVariable(inst, spirv.StorageClassOutput, true)
}

func regIndex(inst Instruction) uint32 {
	if len(inst.Dst) > 0 {
		return inst.Dst[0].Register.Index
	}
	return 0
}

func builtinFor(sv SysValSemantic) (spirv.BuiltIn, bool) {
	switch sv {
	case SysValPosition:
		return spirv.BuiltInPosition, true
	case SysValVertexID:
		return spirv.BuiltInVertexIndex, true
	case SysValInstanceID:
		return spirv.BuiltInInstanceIndex, true
	case SysValPrimitiveID:
		return spirv.BuiltInPrimitiveId, true
	case SysValIsFrontFace:
		return spirv.BuiltInFrontFacing, true
	case SysValSampleIndex:
		return spirv.BuiltInSampleId, true
	case SysValRenderTargetArrayIndex:
		return spirv.BuiltInLayer, true
	default:
		return 0, false
	}
}

func (c *Compiler) declareIOVariable(inst Instruction, storageClass spirv.StorageClass, systemValue bool) error {
	regType := RegisterInput
	if storageClass == spirv.StorageClassOutput {
		regType = RegisterOutput
	}
	regIdx := regIndex(inst)

	scalarIntegral := systemValue && inst.ComponentType != ComponentFloat
	var varType uint32
	if scalarIntegral {
		varType = c.builder.TypeID(spirvComponentType(inst.ComponentType), 1)
	} else {
		varType = c.builder.TypeID(spirv.ComponentFloat, 4)
	}

	ptrType := c.builder.PointerType(storageClass, varType)
	id := c.builder.Variable(ptrType, storageClass)
	c.builder.AddInterface(id)

	if bi, ok := builtinFor(inst.SysValSemantic); systemValue && ok {
		c.builder.Decorate(id, spirv.DecorationBuiltIn, uint32(bi))
	} else {
		c.builder.Decorate(id, spirv.DecorationLocation, regIdx)
	}

	prefix := "v"
	if storageClass == spirv.StorageClassOutput {
		prefix = "o"
	}
	c.builder.Name(id, fmt.Sprintf("%s%d", prefix, regIdx))

	c.symbols[SymbolKey{Type: regType, Index: regIdx}] = Symbol{ID: id, PointerType: ptrType}
	return nil
}

// dclThreadGroup stashes the compute local size on the builder (spec §4.7).
func (c *Compiler) dclThreadGroup(inst Instruction) error {
	c.builder.SetLocalSize(inst.ThreadGroupSize[0], inst.ThreadGroupSize[1], inst.ThreadGroupSize[2])
	return nil
}
