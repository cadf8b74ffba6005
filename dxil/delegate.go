package dxil

import (
	"runtime"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

// Delegate wraps a dynamically-loaded external DXIL→SPIR-V translator
// (`libvkd3d-shader-dxil.so`/`.dylib`/`.dll`), grounded on
// gogpu-wgpu/hal/gles/egl's pattern of resolving C symbols into
// unsafe.Pointer + types.CallInterface and invoking them through
// ffi.CallFunction.
//
// The translator's assumed C ABI:
//
//	int32_t vkd3d_shader_translate_dxil(
//	    const void *dxil, uint64_t dxil_size,
//	    void *srv_remap, void *sampler_remap, void *cbv_remap,
//	    void *uav_remap, void *vertex_input_remap, void *stream_output_remap,
//	    void **spirv_out, uint64_t *spirv_size_out);
//	void vkd3d_shader_free_spirv(void *ptr);
//
// Each remap_* argument is a callback of signature
// `uint64_t(*)(uint64_t space, uint64_t register)` returning the packed
// Vulkan binding `(uint64(set)<<32)|uint64(binding)`.
type Delegate struct {
	lib unsafe.Pointer

	symTranslate unsafe.Pointer
	symFreeSPIRV unsafe.Pointer

	cifTranslate types.CallInterface
	cifFree      types.CallInterface
}

// NewDelegate loads libraryPath and resolves the translator's entry
// points. The library is kept mapped for the process lifetime, matching
// the EGL/Vulkan loader convention this is grounded on (none of them
// expose an unload path either).
func NewDelegate(libraryPath string) (*Delegate, error) {
	lib, err := ffi.LoadLibrary(libraryPath)
	if err != nil {
		return nil, errCompile("load " + libraryPath + ": " + err.Error())
	}

	symTranslate, err := ffi.GetSymbol(lib, "vkd3d_shader_translate_dxil")
	if err != nil {
		return nil, errCompile("vkd3d_shader_translate_dxil not found: " + err.Error())
	}
	symFree, err := ffi.GetSymbol(lib, "vkd3d_shader_free_spirv")
	if err != nil {
		return nil, errCompile("vkd3d_shader_free_spirv not found: " + err.Error())
	}

	d := &Delegate{lib: lib, symTranslate: symTranslate, symFreeSPIRV: symFree}

	ptr := types.PointerTypeDescriptor
	u64 := types.UInt64TypeDescriptor
	s32 := types.SInt32TypeDescriptor

	if err := ffi.PrepareCallInterface(&d.cifTranslate, types.DefaultCall, s32,
		[]*types.TypeDescriptor{ptr, u64, ptr, ptr, ptr, ptr, ptr, ptr, ptr, ptr}); err != nil {
		return nil, errCompile("prepare translate call interface: " + err.Error())
	}
	if err := ffi.PrepareCallInterface(&d.cifFree, types.DefaultCall, types.VoidTypeDescriptor,
		[]*types.TypeDescriptor{ptr}); err != nil {
		return nil, errCompile("prepare free call interface: " + err.Error())
	}
	return d, nil
}

// packBinding encodes a Binding into the single uintptr value the
// remap trampolines return across the C ABI.
func packBinding(b Binding) uintptr {
	return uintptr(uint64(b.Set)<<32 | uint64(b.Binding))
}

// remapTrampoline adapts a Go RemapFunc to the
// `uintptr(uintptr,uintptr) uintptr` shape ffi.NewCallback requires.
func remapTrampoline(fn RemapFunc) uintptr {
	return ffi.NewCallback(func(space, register uintptr) uintptr {
		return packBinding(fn(uint32(space), uint32(register)))
	})
}

// Compile invokes the external translator on a DXIL module, wiring
// callbacks into the six remap contexts it marshals into the C-ABI
// trampoline the loaded library expects (spec §6). Every RemapCallbacks
// field is given a fallback identity mapping first, so the library
// always sees six live function pointers.
func (d *Delegate) Compile(dxilBlob []byte, callbacks RemapCallbacks) ([]byte, error) {
	if len(dxilBlob) == 0 {
		return nil, errCompile("empty DXIL blob")
	}
	callbacks = callbacks.fillDefaults()

	srvCB := remapTrampoline(callbacks.SRV)
	samplerCB := remapTrampoline(callbacks.Sampler)
	cbvCB := remapTrampoline(callbacks.CBV)
	uavCB := remapTrampoline(callbacks.UAV)
	vertexCB := remapTrampoline(callbacks.VertexInput)
	streamCB := remapTrampoline(callbacks.StreamOutput)

	dxilSize := uint64(len(dxilBlob))
	var spirvPtr unsafe.Pointer
	var spirvSize uint64

	args := [10]unsafe.Pointer{
		unsafe.Pointer(&dxilBlob[0]),
		unsafe.Pointer(&dxilSize),
		unsafe.Pointer(&srvCB),
		unsafe.Pointer(&samplerCB),
		unsafe.Pointer(&cbvCB),
		unsafe.Pointer(&uavCB),
		unsafe.Pointer(&vertexCB),
		unsafe.Pointer(&streamCB),
		unsafe.Pointer(&spirvPtr),
		unsafe.Pointer(&spirvSize),
	}

	var status int32
	if err := ffi.CallFunction(&d.cifTranslate, d.symTranslate, unsafe.Pointer(&status), args[:]); err != nil {
		return nil, errCompile("call vkd3d_shader_translate_dxil: " + err.Error())
	}
	// Keep the callback pointers alive until after the call returns;
	// the garbage collector has no visibility into the C call frame
	// holding onto them.
	runtime.KeepAlive(srvCB)
	runtime.KeepAlive(samplerCB)
	runtime.KeepAlive(cbvCB)
	runtime.KeepAlive(uavCB)
	runtime.KeepAlive(vertexCB)
	runtime.KeepAlive(streamCB)

	if status != 0 {
		return nil, errCompile("translator returned status " + itoa(status))
	}
	if spirvPtr == nil || spirvSize == 0 {
		return nil, errCompile("translator produced no SPIR-V output")
	}

	out := make([]byte, spirvSize)
	copy(out, unsafe.Slice((*byte)(spirvPtr), spirvSize))

	freeArgs := [1]unsafe.Pointer{unsafe.Pointer(&spirvPtr)}
	_ = ffi.CallFunction(&d.cifFree, d.symFreeSPIRV, nil, freeArgs[:])

	return out, nil
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
