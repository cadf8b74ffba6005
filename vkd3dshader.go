// Package vkd3dshader is the public entry point composing the DXBC
// container codec, root-signature codec, TPF-to-SPIR-V compiler and
// DXIL delegation boundary (spec §9 "a small number of entry points
// compose the components"). It mirrors naga's root `Compile`/`Lower`
// façade shape: one thin one-shot function plus staged access to the
// intermediate stages for callers that need them.
package vkd3dshader

import (
	"github.com/gogpu/vkd3d-shader/dxbc"
	"github.com/gogpu/vkd3d-shader/dxil"
	"github.com/gogpu/vkd3d-shader/rootsig"
	"github.com/gogpu/vkd3d-shader/spirv"
	"github.com/gogpu/vkd3d-shader/tpf"
	"github.com/gogpu/vkd3d-shader/vkerr"
)

// SourceKind tags which shader representation a SourceBlob carries
// (spec §9 "sum type SourceBlob = Tpf(Bytes) | Dxil(Bytes) | None",
// extended here with Dxbc since this module compiles whole DXBC
// containers, not just bare TPF streams).
type SourceKind int

const (
	SourceTPF SourceKind = iota
	SourceDXBC
	SourceDXIL
)

// TargetKind tags which representation a CodeBlob carries. SPIR-V is
// the only target this module produces.
type TargetKind int

const (
	TargetSPIRV TargetKind = iota
)

// SourceBlob is the compile entry point's tagged input (spec §9
// "C-ABI-shaped structs with a type tag"): exactly one of Kind's
// matching interpretations of Data applies.
type SourceBlob struct {
	Kind SourceKind
	Data []byte
}

// CodeBlob is the compile entry point's tagged output.
type CodeBlob struct {
	Kind TargetKind
	Data []byte
}

// CompileOptions configures a Compile call. Reader is required when
// Kind is SourceTPF or SourceDXBC: the TPF compiler never parses raw
// bytes itself (spec §6), it consumes an already-decoded instruction
// stream from a caller-supplied tpf.InstructionReader. DXIL is required
// when Kind is SourceDXIL; Callback is passed through to it.
type CompileOptions struct {
	ExecutionModel spirv.ExecutionModel
	EntryPoint     string
	StripDebug     bool
	BufferUAV      bool

	Reader   tpf.InstructionReader
	TPFOpts  []tpf.Option
	DXIL     *dxil.Delegate
	Callback dxil.RemapCallbacks
}

// Compile runs one shader source blob through its matching pipeline
// end to end and returns one target code blob (spec §9's compile
// entry point), mirroring naga's root Compile(source string) ([]byte,
// error) façade shape.
func Compile(src SourceBlob, opts CompileOptions) (*CodeBlob, error) {
	switch src.Kind {
	case SourceTPF:
		words, err := CompileTPF(src.Data, opts)
		if err != nil {
			return nil, err
		}
		return &CodeBlob{Kind: TargetSPIRV, Data: words}, nil
	case SourceDXBC:
		words, err := compileDXBCSource(src.Data, opts)
		if err != nil {
			return nil, err
		}
		return &CodeBlob{Kind: TargetSPIRV, Data: words}, nil
	case SourceDXIL:
		if opts.DXIL == nil {
			return nil, vkerr.New(vkerr.InvalidArgument, "vkd3dshader.Compile", "SourceDXIL requires a DXIL delegate")
		}
		words, err := opts.DXIL.Compile(src.Data, opts.Callback)
		if err != nil {
			return nil, err
		}
		return &CodeBlob{Kind: TargetSPIRV, Data: words}, nil
	default:
		return nil, vkerr.New(vkerr.InvalidArgument, "vkd3dshader.Compile", "unknown source kind")
	}
}

// ParsedContainer is ParseDXBC's staged result: every chunk keyed by
// tag, plus the handful of chunks the rest of this module cares about
// decoded eagerly.
type ParsedContainer struct {
	Chunks          map[string][]byte
	InputSignature  *dxbc.Signature
	OutputSignature *dxbc.Signature
	RootSignature   []byte // raw RTS0 payload, if present; pass to ParseRootSignature.
	Code            []byte // raw SHEX/SHDR payload, if present; pass to CompileTPF.
}

// ParseDXBC walks a DXBC container's chunk directory (C3) and returns
// every chunk plus the input/output signatures and root-signature/code
// payloads decoded where present, for callers that need staged access
// instead of the one-shot Compile.
func ParseDXBC(data []byte) (*ParsedContainer, error) {
	pc := &ParsedContainer{Chunks: make(map[string][]byte)}
	err := dxbc.Parse(data, func(tag string, payload []byte, container []byte) error {
		pc.Chunks[tag] = payload
		switch tag {
		case "ISGN", "OSGN", "PCSG":
			sig, err := dxbc.ParseSignature(tag, payload)
			if err != nil {
				return err
			}
			if tag == "ISGN" {
				pc.InputSignature = sig
			} else if tag == "OSGN" {
				pc.OutputSignature = sig
			}
		case "RTS0":
			pc.RootSignature = payload
		case "SHEX", "SHDR":
			pc.Code = payload
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// ParseRootSignature decodes an RTS0 chunk payload into a
// *rootsig.RootSignature (C5).
func ParseRootSignature(payload []byte) (*rootsig.RootSignature, error) {
	return rootsig.Parse(payload)
}

// CompileTPF drains opts.Reader over blob and lowers every instruction
// into a fresh SPIR-V module (C7), returning the finished module's
// bytes. opts.Reader must be non-nil.
func CompileTPF(blob []byte, opts CompileOptions) ([]byte, error) {
	if opts.Reader == nil {
		return nil, vkerr.New(vkerr.InvalidArgument, "vkd3dshader.CompileTPF", "TPF source requires an InstructionReader")
	}
	entry := opts.EntryPoint
	if entry == "" {
		entry = "main"
	}
	c := tpf.NewCompiler(opts.ExecutionModel, entry, opts.TPFOpts...)
	if err := tpf.CompileStream(c, opts.Reader, blob); err != nil {
		return nil, err
	}
	c.Builder().FinishFunction()
	return c.Builder().Build(), nil
}

// compileDXBCSource extracts a container's code chunk and runs it
// through CompileTPF.
func compileDXBCSource(data []byte, opts CompileOptions) ([]byte, error) {
	pc, err := ParseDXBC(data)
	if err != nil {
		return nil, err
	}
	if pc.Code == nil {
		return nil, vkerr.New(vkerr.InvalidArgument, "vkd3dshader.Compile", "container carries no SHEX/SHDR code chunk")
	}
	return CompileTPF(pc.Code, opts)
}
