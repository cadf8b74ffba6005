package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction is one encoded SPIR-V instruction: an opcode plus its
// operand words (which, for result-producing ops, embed the result type
// and/or result id as leading operands per the SPIR-V wire format).
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode packs the instruction into its wire form: a single header word
// `(wordCount<<16)|opcode` followed by the operand words.
func (i Instruction) Encode() []uint32 {
	out := make([]uint32, 0, len(i.Words)+1)
	out = append(out, (uint32(len(i.Words)+1)<<16)|uint32(i.Opcode))
	out = append(out, i.Words...)
	return out
}

// wordBuilder accumulates operand words for one instruction, including
// SPIR-V's packed-string encoding (4 bytes per word, little-endian,
// NUL-terminated, zero-padded to a whole word).
type wordBuilder struct {
	words []uint32
}

func (b *wordBuilder) word(w uint32) *wordBuilder {
	b.words = append(b.words, w)
	return b
}

func (b *wordBuilder) str(s string) *wordBuilder {
	buf := append([]byte(s), 0)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	for i := 0; i < len(buf); i += 4 {
		b.words = append(b.words, uint32(buf[i])|uint32(buf[i+1])<<8|uint32(buf[i+2])<<16|uint32(buf[i+3])<<24)
	}
	return b
}

func (b *wordBuilder) build(op OpCode) Instruction {
	return Instruction{Opcode: op, Words: b.words}
}

// typeKey memoizes (component-type, component-count) to a cached type id
// per spec §3 ("a memoisation table from (component-type, component-count)
// to the cached type id").
type typeKey struct {
	kind  ComponentType
	count uint8
}

// ComponentType is the scalar kind of a SPIR-V type (void/float/int/uint).
type ComponentType uint8

const (
	ComponentVoid ComponentType = iota
	ComponentFloat
	ComponentInt
	ComponentUint
	ComponentBool
)

// Builder is the append-only SPIR-V module constructor described in
// spec.md §4.6/§3: a monotonically increasing id counter, an enabled-
// capability bitset, a lazily-allocated GLSL.std.450 import id, an
// execution-model tag, four logical word streams, an entry-point
// interface list, and a type memoization table.
type Builder struct {
	nextID uint32

	capBits   uint64
	execModel ExecutionModel
	glslExtID uint32 // 0 until first referenced

	entryFunc   uint32
	entryName   string
	interfaces  []uint32
	localSize   [3]uint32
	hasLocal    bool

	debug       []Instruction
	annotations []Instruction
	globals     []Instruction
	function    []Instruction

	types map[typeKey]uint32

	voidType uint32
	fnType   uint32
	mainFunc uint32
	entryLbl uint32
}

// NewBuilder creates a Builder and bootstraps `void main()`: it allocates
// the void type, the `void()` function type, opens the function with
// OpFunction/OpLabel, per spec §4.6.
func NewBuilder(model ExecutionModel, entryName string) *Builder {
	b := &Builder{
		nextID:    1,
		execModel: model,
		entryName: entryName,
		types:     make(map[typeKey]uint32),
	}
	b.enableModelCapability(model)

	b.voidType = b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(b.voidType).build(OpTypeVoid))

	b.fnType = b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(b.fnType).word(b.voidType).build(OpTypeFunction))

	b.mainFunc = b.allocID()
	b.function = append(b.function, (&wordBuilder{}).
		word(b.voidType).word(b.mainFunc).word(uint32(FunctionControlNone)).word(b.fnType).
		build(OpFunction))

	b.entryLbl = b.allocID()
	b.function = append(b.function, (&wordBuilder{}).word(b.entryLbl).build(OpLabel))

	b.entryFunc = b.mainFunc
	return b
}

func (b *Builder) allocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// AllocID exposes id allocation to callers (e.g. the TPF compiler)
// building their own instructions against the streams below.
func (b *Builder) AllocID() uint32 { return b.allocID() }

func (b *Builder) enableModelCapability(model ExecutionModel) {
	switch model {
	case ExecutionModelFragment, ExecutionModelVertex, ExecutionModelGLCompute:
		b.EnableCapability(CapabilityShader)
	case ExecutionModelGeometry:
		b.EnableCapability(CapabilityShader)
		b.EnableCapability(CapabilityGeometry)
	case ExecutionModelTessellationControl, ExecutionModelTessellationEvaluation:
		b.EnableCapability(CapabilityShader)
		b.EnableCapability(CapabilityTessellation)
	}
}

// EnableCapability sets a bit in the 64-bit capability mask (spec §4.6).
func (b *Builder) EnableCapability(cap Capability) {
	b.capBits |= 1 << uint(cap)
}

// ExtGLSL returns the (lazily-allocated) id of the imported GLSL.std.450
// extended-instruction set, importing it on first use.
func (b *Builder) ExtGLSL() uint32 {
	if b.glslExtID == 0 {
		b.glslExtID = b.allocID()
	}
	return b.glslExtID
}

// SetLocalSize attaches the compute-only three-element local-size array
// (spec §4.6 "Compute-only payload").
func (b *Builder) SetLocalSize(x, y, z uint32) {
	b.localSize = [3]uint32{x, y, z}
	b.hasLocal = true
}

// AddInterface adds an id to the entry point's interface list (inputs,
// outputs, and — for SPIR-V >= 1.4 — all referenced global variables;
// this module follows the Vulkan 1.0 convention of listing only
// Input/Output variables, which is all TPF declarations produce).
func (b *Builder) AddInterface(id uint32) {
	b.interfaces = append(b.interfaces, id)
}

// EntryFunctionID returns the SPIR-V id of the bootstrapped main function.
func (b *Builder) EntryFunctionID() uint32 { return b.entryFunc }

// --- type interning (spec §4.6) ---

// TypeID returns the cached type id for a (component-type, count) pair,
// creating it on first use. count must be in 1..4; vectors of void are
// rejected by returning 0.
func (b *Builder) TypeID(kind ComponentType, count int) uint32 {
	if kind == ComponentVoid && count != 1 {
		return 0
	}
	key := typeKey{kind: kind, count: uint8(count)}
	if id, ok := b.types[key]; ok {
		return id
	}

	var scalarKey = typeKey{kind: kind, count: 1}
	scalarID, ok := b.types[scalarKey]
	if !ok {
		scalarID = b.allocID()
		var inst Instruction
		switch kind {
		case ComponentVoid:
			inst = (&wordBuilder{}).word(scalarID).build(OpTypeVoid)
		case ComponentFloat:
			inst = (&wordBuilder{}).word(scalarID).word(32).build(OpTypeFloat)
		case ComponentInt:
			inst = (&wordBuilder{}).word(scalarID).word(32).word(1).build(OpTypeInt)
		case ComponentUint:
			inst = (&wordBuilder{}).word(scalarID).word(32).word(0).build(OpTypeInt)
		case ComponentBool:
			inst = (&wordBuilder{}).word(scalarID).build(OpTypeBool)
		}
		b.globals = append(b.globals, inst)
		b.types[scalarKey] = scalarID
	}

	if count == 1 {
		b.types[key] = scalarID
		return scalarID
	}

	vecID := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(vecID).word(scalarID).word(uint32(count)).build(OpTypeVector))
	b.types[key] = vecID
	return vecID
}

// PointerType returns (allocating if needed) an OpTypePointer to baseType
// in the given storage class. Pointer types are not deduplicated via the
// scalar/vector cache above: every call emits a fresh OpTypePointer, and
// the TPF compiler asks for one per declared variable and another on
// each constant-buffer access and scalar load.
func (b *Builder) PointerType(storageClass StorageClass, baseType uint32) uint32 {
	id := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(id).word(uint32(storageClass)).word(baseType).build(OpTypePointer))
	return id
}

// ArrayType emits OpTypeArray elemType[lengthConst]. Not deduplicated,
// like PointerType — each constant-buffer declaration needs its own
// distinct array type since the length constant differs.
func (b *Builder) ArrayType(elemType, lengthConst uint32) uint32 {
	id := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(id).word(elemType).word(lengthConst).build(OpTypeArray))
	return id
}

// StructType emits OpTypeStruct over the given member type ids.
func (b *Builder) StructType(memberTypes ...uint32) uint32 {
	id := b.allocID()
	wb := (&wordBuilder{}).word(id)
	for _, m := range memberTypes {
		wb.word(m)
	}
	b.globals = append(b.globals, wb.build(OpTypeStruct))
	return id
}

// --- constants ---

// ConstantFloat32 emits OpConstant for a float32 value.
func (b *Builder) ConstantFloat32(typeID uint32, v float32) uint32 {
	id := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(typeID).word(id).word(math.Float32bits(v)).build(OpConstant))
	return id
}

// ConstantUint32 emits OpConstant for a uint32 value.
func (b *Builder) ConstantUint32(typeID uint32, v uint32) uint32 {
	id := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(typeID).word(id).word(v).build(OpConstant))
	return id
}

// ConstantComposite emits OpConstantComposite over constituent ids.
func (b *Builder) ConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	id := b.allocID()
	wb := (&wordBuilder{}).word(typeID).word(id)
	for _, c := range constituents {
		wb.word(c)
	}
	b.globals = append(b.globals, wb.build(OpConstantComposite))
	return id
}

// --- globals ---

// Variable emits an OpVariable into the globals stream.
func (b *Builder) Variable(pointerType uint32, storageClass StorageClass) uint32 {
	id := b.allocID()
	b.globals = append(b.globals, (&wordBuilder{}).word(pointerType).word(id).word(uint32(storageClass)).build(OpVariable))
	return id
}

// LocalVariable emits an OpVariable with Function storage class into
// the function stream rather than globals — SPIR-V requires
// function-scope variables to appear among the first instructions of
// the function they belong to, not in the module's global section.
// Callers must emit all LocalVariable calls for a function before any
// other function-body instruction (DCL_TEMPS always precedes the
// instructions that use the temps it declares).
func (b *Builder) LocalVariable(pointerType uint32) uint32 {
	id := b.allocID()
	b.function = append(b.function, (&wordBuilder{}).word(pointerType).word(id).word(uint32(StorageClassFunction)).build(OpVariable))
	return id
}

// Decorate emits OpDecorate into the annotations stream.
func (b *Builder) Decorate(id uint32, dec Decoration, params ...uint32) {
	wb := (&wordBuilder{}).word(id).word(uint32(dec))
	for _, p := range params {
		wb.word(p)
	}
	b.annotations = append(b.annotations, wb.build(OpDecorate))
}

// Name emits OpName into the debug stream.
func (b *Builder) Name(id uint32, name string) {
	b.debug = append(b.debug, (&wordBuilder{}).word(id).str(name).build(OpName))
}

// --- function body ---

// Emit appends a raw instruction to the function stream; used by the TPF
// compiler for the arithmetic/load/store/control-flow opcodes it drives
// directly.
func (b *Builder) Emit(inst Instruction) {
	b.function = append(b.function, inst)
}

// EmitResult appends an instruction of the form `op resultType result
// operands...` and returns the allocated result id.
func (b *Builder) EmitResult(op OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.allocID()
	wb := (&wordBuilder{}).word(resultType).word(id)
	for _, o := range operands {
		wb.word(o)
	}
	b.function = append(b.function, wb.build(op))
	return id
}

// FinishFunction closes the bootstrapped main function with
// OpFunctionEnd. It is not idempotent — every call appends another
// OpFunctionEnd — so callers must call it exactly once after the TPF instruction stream has been fully lowered
// (a trailing RET lowers to OpReturn; FinishFunction only adds the
// OpFunctionEnd SPIR-V itself additionally requires).
func (b *Builder) FinishFunction() {
	b.function = append(b.function, (&wordBuilder{}).build(OpFunctionEnd))
}

// Build finalises the module: it computes the bound (max id + 1 — the
// next id the counter would have allocated), then concatenates the
// header, capability list, ext-inst import (if used), memory model,
// entry point, execution modes, and the four logical streams (debug /
// annotations / globals / function) into the final word stream. The
// caller must have already called FinishFunction; Build does not close
// the function body itself.
func (b *Builder) Build() []byte {
	var entryPoint Instruction
	{
		wb := (&wordBuilder{}).word(uint32(b.execModel)).word(b.entryFunc).str(b.entryName)
		for _, id := range b.interfaces {
			wb.word(id)
		}
		entryPoint = wb.build(OpEntryPoint)
	}

	var execModes []Instruction
	if b.hasLocal {
		execModes = append(execModes, (&wordBuilder{}).
			word(b.entryFunc).word(uint32(ExecutionModeLocalSize)).
			word(b.localSize[0]).word(b.localSize[1]).word(b.localSize[2]).
			build(OpExecutionMode))
	} else if b.execModel == ExecutionModelFragment {
		execModes = append(execModes, (&wordBuilder{}).
			word(b.entryFunc).word(uint32(ExecutionModeOriginUpperLeft)).
			build(OpExecutionMode))
	}

	var capInsts []Instruction
	for bit := Capability(0); bit < 64; bit++ {
		if b.capBits&(1<<uint(bit)) == 0 {
			continue
		}
		word, ok := capabilityWords[bit]
		if !ok {
			continue
		}
		capInsts = append(capInsts, (&wordBuilder{}).word(word).build(OpCapability))
	}

	var extInsts []Instruction
	if b.glslExtID != 0 {
		extInsts = append(extInsts, (&wordBuilder{}).word(b.glslExtID).str("GLSL.std.450").build(OpExtInstImport))
	}

	memModel := (&wordBuilder{}).word(uint32(AddressingModelLogical)).word(uint32(MemoryModelGLSL450)).build(OpMemoryModel)

	total := 5
	sections := [][]Instruction{capInsts, extInsts, {memModel}, {entryPoint}, execModes, b.debug, b.annotations, b.globals, b.function}
	for _, s := range sections {
		for _, inst := range s {
			total += len(inst.Encode())
		}
	}

	out := make([]byte, total*4)
	off := 0
	putW := func(w uint32) {
		binary.LittleEndian.PutUint32(out[off:], w)
		off += 4
	}
	putW(MagicNumber)
	putW(Version1_0.word())
	putW(GeneratorID)
	putW(b.nextID) // bound
	putW(0)        // schema

	for _, s := range sections {
		for _, inst := range s {
			for _, w := range inst.Encode() {
				putW(w)
			}
		}
	}
	return out
}
