package pipeline

// AppendVarint encodes v as 7-bit little-endian base-128 with a high-bit
// continuation, identical to LEB128-unsigned-for-u32 (spec §3 "Varint
// format"), appending the encoded bytes to dst and returning the result.
func AppendVarint(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadVarint decodes one varint-encoded u32 starting at offset in data,
// returning the value and the offset just past it. Fails with *invalid
// argument* if the stream ends before a terminating byte (high bit
// clear) or the value would overflow 32 bits (more than 5 continuation
// groups).
func ReadVarint(data []byte, offset int) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; ; i++ {
		if i >= 5 {
			return 0, 0, errInvalid("pipeline.ReadVarint", "varint too long")
		}
		if offset >= len(data) {
			return 0, 0, errInvalid("pipeline.ReadVarint", "truncated varint")
		}
		b := data[offset]
		offset++
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, offset, nil
		}
		shift += 7
	}
}

// EncodeSPIRVVarint varint-encodes every word of a SPIR-V module (spec
// §3 "used to compress SPIR-V payloads: sparse words shrink to 1-2
// bytes, dense words cap at 5 bytes").
func EncodeSPIRVVarint(words []uint32) []byte {
	out := make([]byte, 0, len(words)*2)
	for _, w := range words {
		out = AppendVarint(out, w)
	}
	return out
}

// DecodeSPIRVVarint reverses EncodeSPIRVVarint.
func DecodeSPIRVVarint(data []byte) ([]uint32, error) {
	var words []uint32
	offset := 0
	for offset < len(data) {
		v, next, err := ReadVarint(data, offset)
		if err != nil {
			return nil, err
		}
		words = append(words, v)
		offset = next
	}
	return words, nil
}
