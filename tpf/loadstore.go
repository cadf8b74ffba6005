package tpf

import (
	"github.com/gogpu/vkd3d-shader/spirv"
)

// operandPointer returns the SPIR-V pointer id for reg: immediates have
// no pointer and are handled by the caller before reaching here.
func (c *Compiler) operandPointer(reg Register) (ptr uint32, err error) {
	sym, err := c.lookupSymbol(reg)
	if err != nil {
		return 0, err
	}
	if reg.Type == RegisterConstantBuffer {
		// Access resolves to OpAccessChain with indices [0, secondary]
		// producing a pointer to the selected vec4 (spec §4.7).
		vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
		ptrType := c.builder.PointerType(spirv.StorageClassUniform, vec4f)
		zero := c.builder.ConstantUint32(c.builder.TypeID(spirv.ComponentUint, 1), 0)
		secIdx := c.builder.ConstantUint32(c.builder.TypeID(spirv.ComponentUint, 1), reg.Secondary)
		return c.builder.EmitResult(spirv.OpAccessChain, ptrType, sym.ID, zero, secIdx), nil
	}
	return sym.ID, nil
}

// emitLoadScalar implements the 1-component write-mask load path:
// OpInBoundsAccessChain into the component index selected by the
// swizzle, then OpLoad of a scalar float, bitcast to targetType if it
// is not float (spec §4.7 "Load / store").
func (c *Compiler) emitLoadScalar(op Operand, targetType spirv.ComponentType) (uint32, error) {
	if op.Register.Type == RegisterImmediate32 || op.Register.Type == RegisterImmediate64 {
		componentIdx := uint8(0)
		if len(op.Swizzle) > 0 {
			componentIdx = op.Swizzle[0]
		}
		kind := ComponentFloat
		if targetType == spirv.ComponentUint {
			kind = ComponentUint
		} else if targetType == spirv.ComponentInt {
			kind = ComponentInt
		}
		return c.getConstant(kind, []uint32{op.Register.Immediate[componentIdx]}), nil
	}

	basePtr, err := c.operandPointer(op.Register)
	if err != nil {
		return 0, err
	}

	componentIdx := uint32(0)
	if len(op.Swizzle) > 0 {
		componentIdx = uint32(op.Swizzle[0])
	}

	f32 := c.builder.TypeID(spirv.ComponentFloat, 1)
	f32Ptr := c.builder.PointerType(spirv.StorageClassFunction, f32)
	idxConst := c.builder.ConstantUint32(c.builder.TypeID(spirv.ComponentUint, 1), componentIdx)

	elemPtr := c.builder.EmitResult(spirv.OpInBoundsAccessChain, f32Ptr, basePtr, idxConst)
	loaded := c.builder.EmitResult(spirv.OpLoad, f32, elemPtr)

	if targetType == spirv.ComponentFloat {
		return loaded, nil
	}
	targetTypeID := c.builder.TypeID(targetType, 1)
	return c.builder.EmitResult(bitcastOp(spirv.ComponentFloat, targetType), targetTypeID, loaded), nil
}

// emitLoad implements the general vector load path: load the full
// vec4, OpVectorShuffle if the component-count or swizzle is
// non-identity, then bitcast (spec §4.7).
func (c *Compiler) emitLoad(op Operand, componentCount int, targetType spirv.ComponentType) (uint32, error) {
	if op.Register.Type == RegisterImmediate32 || op.Register.Type == RegisterImmediate64 {
		kind := ComponentFloat
		if targetType == spirv.ComponentUint {
			kind = ComponentUint
		} else if targetType == spirv.ComponentInt {
			kind = ComponentInt
		}
		bits := make([]uint32, componentCount)
		for i := 0; i < componentCount; i++ {
			idx := i
			if len(op.Swizzle) > i {
				idx = int(op.Swizzle[i])
			}
			bits[i] = op.Register.Immediate[idx]
		}
		return c.getConstant(kind, bits), nil
	}

	ptr, err := c.operandPointer(op.Register)
	if err != nil {
		return 0, err
	}

	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
	loaded := c.builder.EmitResult(spirv.OpLoad, vec4f, ptr)

	identity := componentCount == 4 && isIdentitySwizzle(op.Swizzle)
	result := loaded
	if !identity {
		vecN := c.builder.TypeID(spirv.ComponentFloat, componentCount)
		operands := []uint32{loaded, loaded}
		for i := 0; i < componentCount; i++ {
			idx := i
			if len(op.Swizzle) > i {
				idx = int(op.Swizzle[i])
			}
			operands = append(operands, uint32(idx))
		}
		result = c.builder.EmitResult(spirv.OpVectorShuffle, vecN, operands...)
	}

	if targetType == spirv.ComponentFloat {
		return result, nil
	}
	targetVecType := c.builder.TypeID(targetType, componentCount)
	return c.builder.EmitResult(bitcastOp(spirv.ComponentFloat, targetType), targetVecType, result), nil
}

// emitStoreScalar stores a scalar value into one component of a
// vec4-backed register, blending it with the existing vec4 using
// OpVectorShuffle when more than that one component must be
// preserved (spec §4.7 "emit_store_scalar").
func (c *Compiler) emitStoreScalar(op Operand, value uint32, valueType spirv.ComponentType) error {
	ptr, err := c.operandPointer(op.Register)
	if err != nil {
		return err
	}

	componentIdx := 0
	if idx := maskComponentIndices(op.WriteMask); len(idx) > 0 {
		componentIdx = idx[0]
	}

	f32Value := value
	if valueType != spirv.ComponentFloat {
		f32 := c.builder.TypeID(spirv.ComponentFloat, 1)
		f32Value = c.builder.EmitResult(bitcastOp(valueType, spirv.ComponentFloat), f32, value)
	}

	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
	existing := c.builder.EmitResult(spirv.OpLoad, vec4f, ptr)

	scalarVec := c.splatScalarToVec4(f32Value)
	shuffleOperands := []uint32{scalarVec, existing}
	for i := 0; i < 4; i++ {
		if i == componentIdx {
			shuffleOperands = append(shuffleOperands, 0)
		} else {
			shuffleOperands = append(shuffleOperands, uint32(4+i))
		}
	}
	blended := c.builder.EmitResult(spirv.OpVectorShuffle, vec4f, shuffleOperands...)
	c.builder.Emit(spirvStore(ptr, blended))
	return nil
}

// emitStore stores value (componentCount components) into dst,
// blending with the existing vec4 via OpVectorShuffle unless the
// write mask covers all four components (spec §4.7).
func (c *Compiler) emitStore(op Operand, value uint32, componentCount int, valueType spirv.ComponentType) error {
	ptr, err := c.operandPointer(op.Register)
	if err != nil {
		return err
	}

	f32Value := value
	if valueType != spirv.ComponentFloat {
		vecType := c.builder.TypeID(spirv.ComponentFloat, componentCount)
		f32Value = c.builder.EmitResult(bitcastOp(valueType, spirv.ComponentFloat), vecType, value)
	}

	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)

	if op.WriteMask == MaskXYZW && componentCount == 4 {
		c.builder.Emit(spirvStore(ptr, f32Value))
		return nil
	}

	existing := c.builder.EmitResult(spirv.OpLoad, vec4f, ptr)

	// OpVectorShuffle reads Vector1's components (f32Value, size
	// componentCount) then Vector2's (existing, size 4) as one combined
	// index space, so a narrower source vector blends into the wider
	// destination without first padding it out to vec4.
	writeIdx := maskComponentIndices(op.WriteMask)
	shuffleOperands := []uint32{f32Value, existing}
	srcCursor := 0
	for i := 0; i < 4; i++ {
		if contains(writeIdx, i) {
			shuffleOperands = append(shuffleOperands, uint32(srcCursor))
			srcCursor++
		} else {
			shuffleOperands = append(shuffleOperands, uint32(componentCount+i))
		}
	}
	blended := c.builder.EmitResult(spirv.OpVectorShuffle, vec4f, shuffleOperands...)
	c.builder.Emit(spirvStore(ptr, blended))
	return nil
}

func (c *Compiler) splatScalarToVec4(scalar uint32) uint32 {
	vec4f := c.builder.TypeID(spirv.ComponentFloat, 4)
	return c.builder.EmitResult(spirv.OpCompositeConstruct, vec4f, scalar, scalar, scalar, scalar)
}

func spirvStore(ptr, value uint32) spirv.Instruction {
	return spirv.Instruction{Opcode: spirv.OpStore, Words: []uint32{ptr, value}}
}

// bitcastOp is always OpBitcast: registers hold raw 32-bit words, so a
// change of component type keeps the bits and only changes their type.
func bitcastOp(from, to spirv.ComponentType) spirv.OpCode {
	return spirv.OpBitcast
}

func isIdentitySwizzle(s Swizzle) bool {
	if len(s) == 0 {
		return true
	}
	for i, c := range s {
		if int(c) != i {
			return false
		}
	}
	return true
}

func maskComponentIndices(mask WriteMask) []int {
	var out []int
	for i := 0; i < 4; i++ {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
