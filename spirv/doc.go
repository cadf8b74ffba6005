// Package spirv builds Vulkan-dialect SPIR-V modules word-by-word.
//
// Builder is the low-level constructor: an append-only id allocator over
// four logical streams (debug, annotations, globals, function body) plus
// a capability bitset and a memoized scalar/vector type cache.
//
//	b := spirv.NewBuilder(spirv.ExecutionModelGLCompute, "main")
//	b.SetLocalSize(8, 8, 1)
//	f32 := b.TypeID(spirv.ComponentFloat, 1)
//	vec4f := b.TypeID(spirv.ComponentFloat, 4)
//	b.FinishFunction()
//	module := b.Build()
//
// The tpf package drives a Builder instruction-by-instruction as it
// lowers a TPF shader body; this package has no knowledge of TPF and only
// emits well-formed SPIR-V words.
package spirv
