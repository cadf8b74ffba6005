package tpf

import (
	"fmt"
	"math"

	"github.com/gogpu/vkd3d-shader/spirv"
	"github.com/gogpu/vkd3d-shader/vkerr"
)

// lookupSymbol resolves a non-immediate register to its SPIR-V symbol,
// per spec §4.7 "register addressing": every non-immediate register is
// looked up in the symbol table.
func (c *Compiler) lookupSymbol(reg Register) (Symbol, error) {
	switch reg.Type {
	case RegisterTemp:
		if reg.Index >= c.tempCount {
			return Symbol{}, vkerr.New(vkerr.InvalidArgument, "tpf.Dispatch",
				fmt.Sprintf("temp index %d out of range (declared %d)", reg.Index, c.tempCount))
		}
		key := SymbolKey{Type: RegisterTemp, Index: reg.Index}
		sym, ok := c.symbols[key]
		if !ok {
			return Symbol{}, vkerr.New(vkerr.InvalidArgument, "tpf.Dispatch",
				fmt.Sprintf("temp r%d referenced before DCL_TEMPS", reg.Index))
		}
		return sym, nil
	case RegisterConstantBuffer:
		key := SymbolKey{Type: RegisterConstantBuffer, Index: reg.Index}
		sym, ok := c.symbols[key]
		if !ok {
			return Symbol{}, vkerr.New(vkerr.InvalidArgument, "tpf.Dispatch",
				fmt.Sprintf("constant buffer cb%d referenced before DCL_CONSTANT_BUFFER", reg.Index))
		}
		return sym, nil
	default:
		key := SymbolKey{Type: reg.Type, Index: reg.Index}
		sym, ok := c.symbols[key]
		if !ok {
			return Symbol{}, vkerr.New(vkerr.InvalidArgument, "tpf.Dispatch",
				fmt.Sprintf("register %v[%d] referenced before its declaration", reg.Type, reg.Index))
		}
		return sym, nil
	}
}

// spirvComponentType maps the declaration-level tpf.ComponentType to
// the builder's scalar kind.
func spirvComponentType(t ComponentType) spirv.ComponentType {
	switch t {
	case ComponentUint:
		return spirv.ComponentUint
	case ComponentInt:
		return spirv.ComponentInt
	default:
		return spirv.ComponentFloat
	}
}

// getConstant memoises an immediate constant in the globals stream
// (spec §4.7 "get_constant"): scalar constants are cached directly,
// vector constants are composited from their per-component ids. bits
// are the raw 32-bit words of each component, reinterpreted as kind.
func (c *Compiler) getConstant(kind ComponentType, bits []uint32) uint32 {
	var key ConstantKey
	key.Type = kind
	key.Count = uint8(len(bits))
	copy(key.Bits[:], bits)
	if id, ok := c.constants[key]; ok {
		return id
	}

	scalarType := c.builder.TypeID(spirvComponentType(kind), 1)
	componentIDs := make([]uint32, len(bits))
	for i, b := range bits {
		switch kind {
		case ComponentUint, ComponentInt:
			componentIDs[i] = c.builder.ConstantUint32(scalarType, b)
		default:
			componentIDs[i] = c.builder.ConstantFloat32(scalarType, math.Float32frombits(b))
		}
	}

	var id uint32
	if len(bits) == 1 {
		id = componentIDs[0]
	} else {
		vecType := c.builder.TypeID(spirvComponentType(kind), len(bits))
		id = c.builder.ConstantComposite(vecType, componentIDs...)
	}

	c.constants[key] = id
	return id
}
