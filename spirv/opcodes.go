// Package spirv implements the append-only SPIR-V module builder (C6):
// an id-allocating word-stream constructor with four logical sub-streams
// (debug, annotations, globals, function body), a capability bitset, and
// a memoized scalar/vector type cache. The opcode, capability and
// decoration tables below are the Vulkan 1.0 SPIR-V dialect this module
// targets; they are wire-format constants, not implementation choices.
package spirv

// MagicNumber is the SPIR-V magic word.
const MagicNumber uint32 = 0x07230203

// GeneratorID identifies this tool as the SPIR-V generator (vendor 0,
// tool id 0 — unregistered).
const GeneratorID uint32 = 0

// Version is a SPIR-V version (major.minor).
type Version struct {
	Major uint8
	Minor uint8
}

// Vulkan 1.0 requires SPIR-V 1.0 unless an extension raises the floor;
// this module targets the universally accepted baseline.
var Version1_0 = Version{1, 0}

func (v Version) word() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8
}

// OpCode is a SPIR-V opcode.
type OpCode uint16

// Opcodes used by the TPF lowering pass and module framing.
const (
	OpNop               OpCode = 0
	OpSource            OpCode = 3
	OpName              OpCode = 5
	OpMemberName        OpCode = 6
	OpString            OpCode = 7
	OpExtension         OpCode = 10
	OpExtInstImport     OpCode = 11
	OpExtInst           OpCode = 12
	OpMemoryModel       OpCode = 14
	OpEntryPoint        OpCode = 15
	OpExecutionMode     OpCode = 16
	OpCapability        OpCode = 17
	OpTypeVoid          OpCode = 19
	OpTypeBool          OpCode = 20
	OpTypeInt           OpCode = 21
	OpTypeFloat         OpCode = 22
	OpTypeVector        OpCode = 23
	OpTypeArray         OpCode = 28
	OpTypeStruct        OpCode = 30
	OpTypePointer       OpCode = 32
	OpTypeFunction      OpCode = 33
	OpConstantTrue      OpCode = 41
	OpConstantFalse     OpCode = 42
	OpConstant          OpCode = 43
	OpConstantComposite OpCode = 44
	OpFunction          OpCode = 54
	OpFunctionParameter OpCode = 55
	OpFunctionEnd       OpCode = 56
	OpVariable          OpCode = 59
	OpLoad              OpCode = 61
	OpStore             OpCode = 62
	OpAccessChain       OpCode = 65
	OpInBoundsAccessChain OpCode = 66
	OpDecorate          OpCode = 71
	OpMemberDecorate    OpCode = 72
	OpVectorShuffle     OpCode = 79
	OpCompositeConstruct OpCode = 80
	OpCompositeExtract  OpCode = 81
	OpConvertFToU       OpCode = 109
	OpConvertFToS       OpCode = 110
	OpConvertSToF       OpCode = 111
	OpConvertUToF       OpCode = 112
	OpBitcast           OpCode = 124
	OpFNegate           OpCode = 127
	OpIAdd              OpCode = 128
	OpFAdd              OpCode = 129
	OpISub              OpCode = 130
	OpFSub              OpCode = 131
	OpIMul              OpCode = 132
	OpFMul              OpCode = 133
	OpUDiv              OpCode = 134
	OpSDiv              OpCode = 135
	OpFDiv              OpCode = 136
	OpDot               OpCode = 148
	OpLogicalAnd        OpCode = 167
	OpLogicalOr         OpCode = 166
	OpLogicalNot        OpCode = 168
	OpSelect            OpCode = 169
	OpIEqual            OpCode = 170
	OpFOrdEqual         OpCode = 180
	OpFOrdLessThan      OpCode = 184
	OpFOrdGreaterThan   OpCode = 186
	OpShiftRightLogical OpCode = 194
	OpShiftLeftLogical  OpCode = 196
	OpBitwiseOr         OpCode = 197
	OpBitwiseXor        OpCode = 198
	OpBitwiseAnd        OpCode = 199
	OpNot               OpCode = 200
	OpBitFieldInsert    OpCode = 201
	OpLabel             OpCode = 248
	OpBranch            OpCode = 249
	OpBranchConditional OpCode = 250
	OpKill              OpCode = 252
	OpReturn            OpCode = 253
	OpReturnValue       OpCode = 254
	OpUnreachable       OpCode = 255
)

// Capability is a SPIR-V capability bit index (not the raw SPIR-V
// enumerant — see capabilityWords below for the mapping). The spec
// bounds this set at 64 capability bits (see DESIGN.md Open Question 3).
type Capability uint8

const (
	CapabilityMatrix Capability = iota
	CapabilityShader
	CapabilityTessellation
	CapabilityGeometry
	CapabilityFloat16
	CapabilityFloat64
	CapabilityInt64
	CapabilityInt16
	CapabilityInt8
	CapabilityUniformBufferArrayDynamicIndexing
)

// capabilityWords maps a Capability bit to its SPIR-V enumerant value.
var capabilityWords = map[Capability]uint32{
	CapabilityMatrix:       0,
	CapabilityShader:       1,
	CapabilityGeometry:     2,
	CapabilityTessellation: 3,
	CapabilityFloat16:      9,
	CapabilityFloat64:      10,
	CapabilityInt64:        11,
	CapabilityInt16:        22,
	CapabilityInt8:         39,
	CapabilityUniformBufferArrayDynamicIndexing: 28,
}

// Decoration is a SPIR-V decoration enumerant.
type Decoration uint32

const (
	DecorationBlock             Decoration = 2
	DecorationArrayStride       Decoration = 6
	DecorationBuiltIn           Decoration = 11
	DecorationFlat              Decoration = 14
	DecorationNoPerspective     Decoration = 13
	DecorationCentroid          Decoration = 16
	DecorationSample            Decoration = 17
	DecorationLocation          Decoration = 30
	DecorationDescriptorSet     Decoration = 34
	DecorationBinding           Decoration = 33
)

// BuiltIn is a SPIR-V builtin enumerant.
type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
	BuiltInPrimitiveId          BuiltIn = 7
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleId             BuiltIn = 18
	BuiltInViewportIndex        BuiltIn = 10
	BuiltInLayer                BuiltIn = 9
	BuiltInFragDepth            BuiltIn = 22
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupId          BuiltIn = 26
	BuiltInLocalInvocationId    BuiltIn = 27
	BuiltInGlobalInvocationId   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
)

// ExecutionModel is a SPIR-V execution model enumerant.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
	ExecutionModelGeometry  ExecutionModel = 3
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
)

// ExecutionMode is a SPIR-V execution mode enumerant.
type ExecutionMode uint32

const (
	ExecutionModeLocalSize       ExecutionMode = 17
	ExecutionModeOriginUpperLeft ExecutionMode = 7
)

// StorageClass is a SPIR-V storage class enumerant.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassFunction        StorageClass = 7
)

// AddressingModel and MemoryModel are SPIR-V header enumerants.
type AddressingModel uint32
type MemoryModel uint32

const (
	AddressingModelLogical AddressingModel = 0
)

const (
	MemoryModelGLSL450 MemoryModel = 1
)

// FunctionControl is a SPIR-V function-control mask.
type FunctionControl uint32

const FunctionControlNone FunctionControl = 0

// GLSL.std.450 extended-instruction-set opcodes used by the TPF lowering
// pass (§4.7). The full set is larger; only the ones this compiler emits
// are named, matching naga's practice of only naming constants its own
// backend actually uses.
const (
	GLSLstd450Fma           uint32 = 50
	GLSLstd450InverseSqrt   uint32 = 32
	GLSLstd450FAbs          uint32 = 4
	GLSLstd450FMin          uint32 = 37
	GLSLstd450FMax          uint32 = 40
	GLSLstd450FClamp        uint32 = 43
	GLSLstd450Sqrt          uint32 = 31
	GLSLstd450Pow           uint32 = 26
	GLSLstd450Exp2          uint32 = 29
	GLSLstd450Log2          uint32 = 30
	GLSLstd450Floor         uint32 = 8
	GLSLstd450Sin           uint32 = 13
	GLSLstd450Cos           uint32 = 14
	GLSLstd450SMin          uint32 = 39
	GLSLstd450SMax          uint32 = 42
	GLSLstd450UMin          uint32 = 38
	GLSLstd450UMax          uint32 = 41
)
