// Package dxil is the DXIL delegation boundary (spec §6): DXIL shaders
// are not compiled by this module's TPF compiler. Instead the caller
// hands the DXIL blob to a separately-linked translator library through
// a C-style ABI of remapping callbacks that map D3D (space, register)
// pairs to Vulkan (set, binding) pairs. This package is the one place
// the unsafe FFI boundary is confined to (delegate.go); everything
// above it deals only in Go types.
package dxil

import "github.com/gogpu/vkd3d-shader/vkerr"

// Binding is the Vulkan (set, binding) pair a remap callback produces
// for a D3D (space, register) pair.
type Binding struct {
	Set     uint32
	Binding uint32
}

// RemapFunc maps one D3D resource's (space, register) to its Vulkan
// binding location.
type RemapFunc func(space, register uint32) Binding

// RemapCallbacks is the six remapping contexts the external translator
// invokes during compilation, one per D3D resource class (spec §6).
// A nil field means that resource class never appears in the DXIL
// module being compiled; the delegate still wires every field so the
// translator always has six valid function pointers to call.
type RemapCallbacks struct {
	SRV          RemapFunc
	Sampler      RemapFunc
	CBV          RemapFunc
	UAV          RemapFunc
	VertexInput  RemapFunc
	StreamOutput RemapFunc
}

func noopRemap(space, register uint32) Binding { return Binding{Set: space, Binding: register} }

// fillDefaults replaces any nil callback with the identity remap
// (space, register) -> (set=space, binding=register) so the delegate
// never has to special-case a partially populated RemapCallbacks.
func (r RemapCallbacks) fillDefaults() RemapCallbacks {
	if r.SRV == nil {
		r.SRV = noopRemap
	}
	if r.Sampler == nil {
		r.Sampler = noopRemap
	}
	if r.CBV == nil {
		r.CBV = noopRemap
	}
	if r.UAV == nil {
		r.UAV = noopRemap
	}
	if r.VertexInput == nil {
		r.VertexInput = noopRemap
	}
	if r.StreamOutput == nil {
		r.StreamOutput = noopRemap
	}
	return r
}

func errCompile(msg string) error {
	return vkerr.New(vkerr.InvalidShader, "dxil.Compile", msg)
}
