package tpf

import (
	"github.com/gogpu/vkd3d-shader/spirv"
)

// componentCountFor returns how many components an instruction's
// destination mask selects, defaulting to 4 when the mask is empty
// (no write mask present on the token, i.e. write everything).
func componentCountFor(op Operand) int {
	n := len(maskComponentIndices(op.WriteMask))
	if n == 0 {
		return 4
	}
	return n
}

// binaryFloatOp builds a two-operand, same-width float ALU handler:
// ADD/MUL/DIV lower to their native opcode, MIN/MAX lower through the
// GLSL.std.450 extended set since SPIR-V has no native min/max opcode
// (spec §4.7 arithmetic table).
func binaryFloatOp(h HandlerIdx) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		n := componentCountFor(dst)
		a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
		if err != nil {
			return err
		}
		b, err := c.emitLoad(inst.Src[1], n, spirv.ComponentFloat)
		if err != nil {
			return err
		}
		resType := c.builder.TypeID(spirv.ComponentFloat, n)

		var result uint32
		switch h {
		case HandlerAdd:
			result = c.builder.EmitResult(spirv.OpFAdd, resType, a, b)
		case HandlerMul:
			result = c.builder.EmitResult(spirv.OpFMul, resType, a, b)
		case HandlerDiv:
			result = c.builder.EmitResult(spirv.OpFDiv, resType, a, b)
		case HandlerMin:
			result = c.builder.EmitResult(spirv.OpExtInst, resType, c.builder.ExtGLSL(), spirv.GLSLstd450FMin, a, b)
		case HandlerMax:
			result = c.builder.EmitResult(spirv.OpExtInst, resType, c.builder.ExtGLSL(), spirv.GLSLstd450FMax, a, b)
		}
		return c.emitStore(dst, result, n, spirv.ComponentFloat)
	}
}

// binaryBitwiseOp builds AND/OR/XOR: both operands are loaded
// reinterpreted as uint bits, the result is stored back as uint bits
// (the destination register has no inherent type either).
func binaryBitwiseOp(h HandlerIdx) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		n := componentCountFor(dst)
		a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentUint)
		if err != nil {
			return err
		}
		b, err := c.emitLoad(inst.Src[1], n, spirv.ComponentUint)
		if err != nil {
			return err
		}
		resType := c.builder.TypeID(spirv.ComponentUint, n)

		var op spirv.OpCode
		switch h {
		case HandlerAnd:
			op = spirv.OpBitwiseAnd
		case HandlerOr:
			op = spirv.OpBitwiseOr
		case HandlerXor:
			op = spirv.OpBitwiseXor
		}
		result := c.builder.EmitResult(op, resType, a, b)
		return c.emitStore(dst, result, n, spirv.ComponentUint)
	}
}

// unaryBitwiseOp builds NOT.
func unaryBitwiseOp(h HandlerIdx) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		n := componentCountFor(dst)
		a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentUint)
		if err != nil {
			return err
		}
		resType := c.builder.TypeID(spirv.ComponentUint, n)
		result := c.builder.EmitResult(spirv.OpNot, resType, a)
		return c.emitStore(dst, result, n, spirv.ComponentUint)
	}
}

// convertOp builds UTOF/ITOF/FTOU/FTOI: a single-operand reinterpreting
// conversion between the float and integer domains.
func convertOp(h HandlerIdx) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		n := componentCountFor(dst)

		var srcType, dstType spirv.ComponentType
		var op spirv.OpCode
		switch h {
		case HandlerUtof:
			srcType, dstType, op = spirv.ComponentUint, spirv.ComponentFloat, spirv.OpConvertUToF
		case HandlerItof:
			srcType, dstType, op = spirv.ComponentInt, spirv.ComponentFloat, spirv.OpConvertSToF
		case HandlerFtou:
			srcType, dstType, op = spirv.ComponentFloat, spirv.ComponentUint, spirv.OpConvertFToU
		case HandlerFtoi:
			srcType, dstType, op = spirv.ComponentFloat, spirv.ComponentInt, spirv.OpConvertFToS
		}

		a, err := c.emitLoad(inst.Src[0], n, srcType)
		if err != nil {
			return err
		}
		resType := c.builder.TypeID(dstType, n)
		result := c.builder.EmitResult(op, resType, a)
		return c.emitStore(dst, result, n, dstType)
	}
}

// unaryExtInstOp builds SQRT/EXP/LOG via the GLSL.std.450 extended
// instruction set (spec §4.7, supplemented opcodes beyond the
// illustrative table).
func unaryExtInstOp(h HandlerIdx) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		n := componentCountFor(dst)
		a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
		if err != nil {
			return err
		}
		resType := c.builder.TypeID(spirv.ComponentFloat, n)

		var extInst uint32
		switch h {
		case HandlerSqrt:
			extInst = spirv.GLSLstd450Sqrt
		case HandlerExp:
			extInst = spirv.GLSLstd450Exp2
		case HandlerLog:
			extInst = spirv.GLSLstd450Log2
		}
		result := c.builder.EmitResult(spirv.OpExtInst, resType, c.builder.ExtGLSL(), extInst, a)
		return c.emitStore(dst, result, n, spirv.ComponentFloat)
	}
}

// mov is data movement with no arithmetic opcode: load from src at the
// destination's mask width, store to dst (spec §4.7 table).
func (c *Compiler) mov(inst Instruction) error {
	dst := inst.Dst[0]
	n := componentCountFor(dst)
	v, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
	if err != nil {
		return err
	}
	return c.emitStore(dst, v, n, spirv.ComponentFloat)
}

// mad is fused multiply-add: dst = src0 * src1 + src2, lowered through
// GLSLstd450Fma rather than a separate multiply+add so the result
// rounds once, matching the source instruction's single-op semantics.
func (c *Compiler) mad(inst Instruction) error {
	dst := inst.Dst[0]
	n := componentCountFor(dst)
	a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
	if err != nil {
		return err
	}
	b, err := c.emitLoad(inst.Src[1], n, spirv.ComponentFloat)
	if err != nil {
		return err
	}
	d, err := c.emitLoad(inst.Src[2], n, spirv.ComponentFloat)
	if err != nil {
		return err
	}
	resType := c.builder.TypeID(spirv.ComponentFloat, n)
	result := c.builder.EmitResult(spirv.OpExtInst, resType, c.builder.ExtGLSL(), spirv.GLSLstd450Fma, a, b, d)
	return c.emitStore(dst, result, n, spirv.ComponentFloat)
}

// rsq is reciprocal square root, lowered through GLSLstd450InverseSqrt
// (no native SPIR-V opcode).
func (c *Compiler) rsq(inst Instruction) error {
	dst := inst.Dst[0]
	n := componentCountFor(dst)
	a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
	if err != nil {
		return err
	}
	resType := c.builder.TypeID(spirv.ComponentFloat, n)
	result := c.builder.EmitResult(spirv.OpExtInst, resType, c.builder.ExtGLSL(), spirv.GLSLstd450InverseSqrt, a)
	return c.emitStore(dst, result, n, spirv.ComponentFloat)
}

// bitfieldIndexOperand loads a width/offset operand for BFI, masking it
// to the low 5 bits unless the register is already a compile-time
// literal (an in-range literal needs no runtime mask; a variable one
// does, since OpBitFieldInsert's behaviour is undefined outside 0-31).
func (c *Compiler) bitfieldIndexOperand(op Operand) (uint32, error) {
	v, err := c.emitLoadScalar(op, spirv.ComponentUint)
	if err != nil {
		return 0, err
	}
	if op.Register.Type == RegisterImmediate32 || op.Register.Type == RegisterImmediate64 {
		return v, nil
	}
	u32 := c.builder.TypeID(spirv.ComponentUint, 1)
	mask := c.builder.ConstantUint32(u32, 0x1f)
	return c.builder.EmitResult(spirv.OpBitwiseAnd, u32, v, mask), nil
}

// bfi is bit-field insert: dst = InsertBits(base, insert, offset, width)
// taking its four operands width, offset, insert, base in that order
// (spec §4.7 table).
func (c *Compiler) bfi(inst Instruction) error {
	dst := inst.Dst[0]
	n := componentCountFor(dst)

	width, err := c.bitfieldIndexOperand(inst.Src[0])
	if err != nil {
		return err
	}
	offset, err := c.bitfieldIndexOperand(inst.Src[1])
	if err != nil {
		return err
	}
	insert, err := c.emitLoad(inst.Src[2], n, spirv.ComponentUint)
	if err != nil {
		return err
	}
	base, err := c.emitLoad(inst.Src[3], n, spirv.ComponentUint)
	if err != nil {
		return err
	}
	resType := c.builder.TypeID(spirv.ComponentUint, n)
	result := c.builder.EmitResult(spirv.OpBitFieldInsert, resType, base, insert, offset, width)
	return c.emitStore(dst, result, n, spirv.ComponentUint)
}

// dotProductOp builds DP2/DP3/DP4: OpDot always returns a scalar, which
// is replicated to every destination component the mask selects — a
// single selected component takes a scalar store, several take a
// splatted vector through emitStore.
func dotProductOp(n int) func(*Compiler, Instruction) error {
	return func(c *Compiler, inst Instruction) error {
		dst := inst.Dst[0]
		a, err := c.emitLoad(inst.Src[0], n, spirv.ComponentFloat)
		if err != nil {
			return err
		}
		b, err := c.emitLoad(inst.Src[1], n, spirv.ComponentFloat)
		if err != nil {
			return err
		}
		f32 := c.builder.TypeID(spirv.ComponentFloat, 1)
		result := c.builder.EmitResult(spirv.OpDot, f32, a, b)
		written := len(maskComponentIndices(dst.WriteMask))
		if written <= 1 {
			return c.emitStoreScalar(dst, result, spirv.ComponentFloat)
		}
		splat := make([]uint32, written)
		for i := range splat {
			splat[i] = result
		}
		vec := c.builder.EmitResult(spirv.OpCompositeConstruct, c.builder.TypeID(spirv.ComponentFloat, written), splat...)
		return c.emitStore(dst, vec, written, spirv.ComponentFloat)
	}
}

// ret lowers RET to OpReturn. Each RET token in the stream lowers to
// its own OpReturn; FinishFunction adds only OpFunctionEnd, never a
// return, so this handler is the only source of OpReturn.
func (c *Compiler) ret(inst Instruction) error {
	c.builder.Emit(spirv.Instruction{Opcode: spirv.OpReturn})
	return nil
}

// unsupportedResourceOp handles the texture/sampler family (SAMPLE,
// SAMPLE_L, LD) and DISCARD: out of scope for this core (spec §6,
// "resource-binding machinery is a DXIL/driver concern"), logged and
// skipped rather than lowered.
func (c *Compiler) unsupportedResourceOp(inst Instruction) error {
	c.logger.Warnf("tpf: resource opcode %d not lowered by this core, skipping", inst.HandlerIdx)
	return nil
}
