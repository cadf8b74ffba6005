package tpf

import (
	"encoding/binary"

	"github.com/gogpu/vkd3d-shader/spirv"
)

// decodeWords splits an encoded module's body into individual 32-bit
// words, mirroring the scanning style spirv's own builder tests use.
func decodeWords(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

// countOpcodes walks the module body (skipping the 5-word header) and
// counts instructions whose opcode matches op.
func countOpcodes(data []byte, op spirv.OpCode) int {
	words := decodeWords(data)
	count := 0
	for i := 5; i < len(words); {
		wc := int(words[i] >> 16)
		if wc == 0 {
			break
		}
		if spirv.OpCode(words[i]&0xFFFF) == op {
			count++
		}
		i += wc
	}
	return count
}
