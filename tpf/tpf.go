// Package tpf implements the TPF ("Tokenized Program Format")
// instruction-stream compiler (C7): it consumes an already-decoded
// instruction stream one instruction at a time and lowers each into a
// spirv.Builder, dispatching on a handler index the way the source
// shader-model bytecode itself is organized.
package tpf

import (
	"log"

	"github.com/gogpu/vkd3d-shader/spirv"
)

// Logger receives unhandled-opcode and unsupported-feature diagnostics.
// The compiler never fails because of these — it logs and continues so
// that partial SPIR-V still emits (spec §7 propagation policy).
type Logger interface {
	Warnf(format string, args ...any)
}

// defaultLogger backs Logger when the caller supplies none, matching
// the teacher's convention of plain log.Printf diagnostics with no
// structured-logging framework.
type defaultLogger struct{}

func (defaultLogger) Warnf(format string, args ...any) { log.Printf(format, args...) }

// RegisterType identifies the kind of operand a Register refers to.
type RegisterType int

const (
	RegisterTemp RegisterType = iota
	RegisterInput
	RegisterOutput
	RegisterColorOut
	RegisterConstantBuffer
	RegisterImmediate32
	RegisterImmediate64
)

// Register is one operand reference: an index into the register type's
// namespace, plus (for CONSTBUFFER) a secondary index selecting the
// vec4 within the buffer.
type Register struct {
	Type      RegisterType
	Index     uint32
	Secondary uint32
	// Immediate holds the literal value(s) for IMMCONST/IMMCONST64 as
	// raw 32-bit words (IMMCONST64 packs each double as two
	// consecutive words, little half first) — DXBC immediates carry no
	// inherent type; the consuming instruction's handler decides
	// whether to reinterpret a word as float, int, or uint bits.
	Immediate [4]uint32
}

// Swizzle selects up to four components (X=0,Y=1,Z=2,W=3) from a
// source register; len(Swizzle) is the component count actually read.
type Swizzle []uint8

// WriteMask is a 4-bit mask (bit i set ⇒ component i is written).
type WriteMask uint8

const (
	MaskX WriteMask = 1 << 0
	MaskY WriteMask = 1 << 1
	MaskZ WriteMask = 1 << 2
	MaskW WriteMask = 1 << 3
	MaskXYZW = MaskX | MaskY | MaskZ | MaskW
)

// ComponentType mirrors the DXBC signature's component_type field,
// reused here for declaration payloads (system-value registers that
// are integral rather than float, per spec §4.7 DCL_INPUT_SGV).
type ComponentType int

const (
	ComponentFloat ComponentType = iota
	ComponentUint
	ComponentInt
)

// SymbolKey is the comparable lookup key for the compiler's symbol
// table (spec §9: "HashMap<SymbolKey, Entry> where Entry carries a
// plain u32" — modeled directly as a comparable struct key rather than
// naga's stringified ir.TypeRegistry key, since TPF register
// references have no recursive shape to normalize).
type SymbolKey struct {
	Type  RegisterType
	Index uint32
}

// Symbol is what a SymbolKey resolves to: the SPIR-V id of the
// declared variable. Immediate constants are not symbols; they are
// memoised separately (see ConstantKey).
type Symbol struct {
	ID uint32
	// PointerType is the SPIR-V id of the symbol's pointer type, as
	// recorded at declaration.
	PointerType uint32
}

// ConstantKey memoizes immediate constants in the globals stream so
// identical literals share one SPIR-V id (spec §4.7 "get_constant").
type ConstantKey struct {
	Type  ComponentType
	Count uint8
	Bits  [4]uint32
}

// Instruction is one decoded TPF instruction, matching the external
// contract in spec §6: handler_idx plus dst/src register lists,
// per-opcode flags, and declaration payloads.
type Instruction struct {
	HandlerIdx HandlerIdx
	Dst        []Operand
	Src        []Operand
	Flags      uint32

	// Declaration payloads; only the field matching HandlerIdx is valid.
	ThreadGroupSize   [3]uint32
	TempCount         uint32
	ConstantBufferNo  uint32
	ConstantBufSize   uint32
	IndexedDynamic    bool
	SysValSemantic    SysValSemantic
	InterpolationMode InterpolationMode
	ComponentType     ComponentType
}

// Operand is one register reference as it appears in an instruction's
// dst or src list, carrying its swizzle/write-mask.
type Operand struct {
	Register  Register
	Swizzle   Swizzle
	WriteMask WriteMask
}

// SysValSemantic enumerates the system-value semantics DCL_INPUT_SGV/
// DCL_OUTPUT_SIV can name, mapped to SPIR-V BuiltIn decorations.
type SysValSemantic int

const (
	SysValNone SysValSemantic = iota
	SysValPosition
	SysValVertexID
	SysValInstanceID
	SysValPrimitiveID
	SysValIsFrontFace
	SysValSampleIndex
	SysValRenderTargetArrayIndex
	SysValDepth
)

// InterpolationMode is the pixel-shader input interpolation qualifier
// (spec §4.7 DCL_INPUT_PS).
type InterpolationMode int

const (
	InterpolationLinear InterpolationMode = iota
	InterpolationConstant
	InterpolationLinearCentroid
	InterpolationLinearNoPerspective
	InterpolationLinearNoPerspectiveCentroid
	InterpolationLinearSample
	InterpolationLinearNoPerspectiveSample
)

// InstructionReader is the external shader-source token reader
// contract (spec §6): the compiler never parses raw bytes itself, it
// consumes whatever already-decoded instruction stream a caller
// supplies through this interface.
type InstructionReader interface {
	// ReadHeader returns the stream's version and an opaque cursor
	// positioned at the first instruction.
	ReadHeader(blob []byte) (version uint32, cursor int, err error)
	// AtEnd reports whether cursor has consumed the whole stream.
	AtEnd(blob []byte, cursor int) bool
	// ReadInstruction decodes one instruction at cursor and returns
	// the cursor advanced past it.
	ReadInstruction(blob []byte, cursor int) (Instruction, int, error)
}

// Compiler drives a spirv.Builder by consuming one Instruction at a
// time from an InstructionReader and dispatching each to a handler
// (spec §4.7).
type Compiler struct {
	builder *spirv.Builder
	logger  Logger

	symbols   map[SymbolKey]Symbol
	constants map[ConstantKey]uint32

	tempBase  uint32
	tempCount uint32
	tempPtr   uint32

	execModel spirv.ExecutionModel
}

// Option configures a Compiler at construction.
type Option func(*Compiler)

// WithLogger overrides the diagnostic sink (default: log.Printf).
func WithLogger(l Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// NewCompiler creates a Compiler that lowers into a fresh spirv.Builder
// for the given execution model and entry-point name.
func NewCompiler(model spirv.ExecutionModel, entryName string, opts ...Option) *Compiler {
	c := &Compiler{
		builder:   spirv.NewBuilder(model, entryName),
		logger:    defaultLogger{},
		symbols:   make(map[SymbolKey]Symbol),
		constants: make(map[ConstantKey]uint32),
		execModel: model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Builder exposes the underlying spirv.Builder for callers that need
// to call Build() once compilation finishes.
func (c *Compiler) Builder() *spirv.Builder { return c.builder }

// CompileStream drains every instruction from r and dispatches each in
// turn, per spec §4.7. It does not call FinishFunction or Build; the
// caller does that once after all instructions (and any RET) have run.
func CompileStream(c *Compiler, r InstructionReader, blob []byte) error {
	_, cursor, err := r.ReadHeader(blob)
	if err != nil {
		return err
	}
	for !r.AtEnd(blob, cursor) {
		inst, next, err := r.ReadInstruction(blob, cursor)
		if err != nil {
			return err
		}
		cursor = next
		if err := c.Dispatch(inst); err != nil {
			return err
		}
	}
	return nil
}
