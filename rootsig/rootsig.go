// Package rootsig implements the root-signature codec (C5): versioned
// parse/serialise/convert/validate for the binding-interface payload
// carried in a DXBC container's RTS0 chunk.
//
// All versions share one RootSignature struct tagged with an explicit
// Version field, rather than a class hierarchy; the Version selects
// which optional words (range and root-descriptor flags, static-sampler
// flags) are read and written.
package rootsig

import "github.com/gogpu/vkd3d-shader/vkerr"

// Version identifies a root-signature binary layout.
type Version uint32

const (
	Version1_0 Version = 1
	Version1_1 Version = 2
	Version1_2 Version = 3
)

func (v Version) valid() bool {
	return v == Version1_0 || v == Version1_1 || v == Version1_2
}

// ParameterType selects the shape of a RootParameter's body.
type ParameterType uint32

const (
	ParameterDescriptorTable ParameterType = iota
	ParameterConstants
	ParameterCBV
	ParameterSRV
	ParameterUAV
)

// ShaderVisibility mirrors the D3D12 enum of the same name.
type ShaderVisibility uint32

const (
	VisibilityAll ShaderVisibility = iota
	VisibilityVertex
	VisibilityHull
	VisibilityDomain
	VisibilityGeometry
	VisibilityPixel
	VisibilityAmplification
	VisibilityMesh
)

// RangeType selects the kind of descriptor a DescriptorRange covers.
type RangeType uint32

const (
	RangeSRV RangeType = iota
	RangeUAV
	RangeCBV
	RangeSampler
)

// DescriptorRangeFlags is only meaningful for v1.1/v1.2 payloads; v1.0
// ranges carry no flags word at all.
type DescriptorRangeFlags uint32

const (
	RangeFlagNone                DescriptorRangeFlags = 0
	RangeFlagDescriptorsVolatile DescriptorRangeFlags = 1 << 0
	RangeFlagDataVolatile        DescriptorRangeFlags = 1 << 1
	RangeFlagDataStaticWhileSet  DescriptorRangeFlags = 1 << 2
	RangeFlagDataStatic          DescriptorRangeFlags = 1 << 3
)

// RootDescriptorFlags is only meaningful for v1.1/v1.2 payloads.
type RootDescriptorFlags uint32

const (
	DescriptorFlagNone               RootDescriptorFlags = 0
	DescriptorFlagDataVolatile       RootDescriptorFlags = 1 << 1
	DescriptorFlagDataStaticWhileSet RootDescriptorFlags = 1 << 2
	DescriptorFlagDataStatic         RootDescriptorFlags = 1 << 3
)

// DescriptorRange is one entry of a descriptor table. Flags is the
// zero value (RangeFlagNone) when parsed from a v1.0 payload, since
// v1.0 ranges carry no flags word.
type DescriptorRange struct {
	Type        RangeType
	Count       uint32
	BaseReg     uint32
	Space       uint32
	Flags       DescriptorRangeFlags
	TableOffset uint32
}

// DescriptorTable is the body of a ParameterDescriptorTable parameter.
type DescriptorTable struct {
	Ranges []DescriptorRange
}

// RootConstants is the body of a ParameterConstants parameter.
type RootConstants struct {
	Register uint32
	Space    uint32
	Count    uint32
}

// RootDescriptor is the body of a ParameterCBV/SRV/UAV parameter.
type RootDescriptor struct {
	Register uint32
	Space    uint32
	Flags    RootDescriptorFlags
}

// RootParameter is one parameter slot of the root signature. Exactly
// one of Table/Constants/Descriptor is populated, selected by Type.
type RootParameter struct {
	Type       ParameterType
	Visibility ShaderVisibility
	Table      *DescriptorTable
	Constants  *RootConstants
	Descriptor *RootDescriptor
}

// Filter and AddressMode mirror the D3D12 static-sampler enums.
type Filter uint32
type AddressMode uint32
type ComparisonFunc uint32
type StaticBorderColor uint32

// StaticSamplerFlags only exists in v1.2 payloads (trailing 14th word);
// v1.0/v1.1 static samplers are 13 words with no flags.
type StaticSamplerFlags uint32

const (
	SamplerFlagNone                StaticSamplerFlags = 0
	SamplerFlagNonNormalizedCoords StaticSamplerFlags = 1 << 0
)

// StaticSampler is a fixed-function sampler description embedded
// directly in the root signature.
type StaticSampler struct {
	Filter         Filter
	AddressU       AddressMode
	AddressV       AddressMode
	AddressW       AddressMode
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc ComparisonFunc
	BorderColor    StaticBorderColor
	MinLOD         float32
	MaxLOD         float32
	Register       uint32
	Space          uint32
	Visibility     ShaderVisibility
	Flags          StaticSamplerFlags
}

// Flags is the root-signature-wide flag word (INPUT_ASSEMBLER_LAYOUT,
// DENY_*_SHADER_ROOT_ACCESS, ALLOW_STREAM_OUTPUT, etc).
type Flags uint32

// RootSignature is the fully decoded contents of an RTS0 chunk,
// independent of which version it was parsed from — callers needing
// version-specific serialisation pass Version back to Serialize.
type RootSignature struct {
	Version    Version
	Parameters []RootParameter
	Samplers   []StaticSampler
	Flags      Flags

	// ContentHash is the FNV-1a hash of the raw bytes this value was
	// parsed from, used for pipeline-compatibility comparisons (§4.5,
	// §4.8). Zero for values constructed in memory rather than parsed.
	ContentHash uint64
}

var errVersion = func(op string) error {
	return vkerr.New(vkerr.InvalidArgument, op, "unrecognised root signature version")
}
