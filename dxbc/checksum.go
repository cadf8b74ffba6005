package dxbc

import (
	"encoding/binary"

	"github.com/gogpu/vkd3d-shader/vkerr"
)

// ChecksumSize is the length in bytes of the checksum slot at offset 4
// in a DXBC container.
const ChecksumSize = 16

// checksumHeaderSkip is the number of leading bytes the checksum
// algorithm skips: the 16-byte checksum slot plus the 4-byte version
// word (spec §4.2).
const checksumHeaderSkip = 20

// Standard MD5 round constants and per-round shift amounts. The
// transform itself is the unmodified RFC 1321 compression function;
// only the padding/length-encoding step below differs, which is why
// this is implemented against crypto/md5's algorithm rather than by
// importing crypto/md5 (which hardwires RFC 1321 padding and exposes no
// hook to substitute the D3D variant described in spec §4.2).
var md5K = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee,
	0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be,
	0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa,
	0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed,
	0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c,
	0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05,
	0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039,
	0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1,
	0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

var md5S = [64]uint32{
	7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22,
	5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20,
	4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23,
	6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21,
}

type md5State struct {
	a, b, c, d uint32
}

func newMD5State() md5State {
	return md5State{a: 0x67452301, b: 0xefcdab89, c: 0x98badcfe, d: 0x10325476}
}

func leftRotate(x, c uint32) uint32 {
	return (x << c) | (x >> (32 - c))
}

// block processes exactly one 64-byte block through the MD5 compression
// function, updating the running state.
func (s *md5State) block(chunk []byte) {
	var m [16]uint32
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint32(chunk[i*4:])
	}

	a, b, c, d := s.a, s.b, s.c, s.d
	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		switch {
		case i < 16:
			f = (b & c) | (^b & d)
			g = i
		case i < 32:
			f = (d & b) | (^d & c)
			g = (5*i + 1) % 16
		case i < 48:
			f = b ^ c ^ d
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^d)
			g = (7 * i) % 16
		}
		f = f + a + md5K[i] + m[g]
		a = d
		d = c
		c = b
		b = b + leftRotate(f, md5S[i])
	}

	s.a += a
	s.b += b
	s.c += c
	s.d += d
}

// Checksum computes the D3D custom MD5 variant over payload starting at
// byte 20 (spec §4.2), returning the four little-endian 32-bit words
// (A, B, C, D). payload must be at least 21 bytes (the precondition
// named in spec §4.2); shorter payloads fail with *invalid argument*.
func Checksum(payload []byte) ([4]uint32, error) {
	if len(payload) < 21 {
		return [4]uint32{}, vkerr.New(vkerr.InvalidArgument, "dxbc.Checksum", "payload shorter than 21 bytes")
	}

	data := payload[checksumHeaderSkip:]
	L := uint32(len(data))
	n := L * 8

	s := newMD5State()

	fullBlocks := L - (L % 64)
	for off := uint32(0); off < fullBlocks; off += 64 {
		s.block(data[off : off+64])
	}
	r := L - fullBlocks
	tail := data[fullBlocks:]

	if r >= 56 {
		pad := make([]byte, 64)
		copy(pad, tail)
		pad[r] = 0x80
		s.block(pad)

		final := make([]byte, 64)
		binary.LittleEndian.PutUint32(final[0:4], n)
		binary.LittleEndian.PutUint32(final[60:64], (n>>2)|1)
		s.block(final)
	} else {
		block := make([]byte, 64)
		binary.LittleEndian.PutUint32(block[0:4], n)
		copy(block[4:4+r], tail)
		block[4+r] = 0x80
		binary.LittleEndian.PutUint32(block[60:64], (n>>2)|1)
		s.block(block)
	}

	return [4]uint32{s.a, s.b, s.c, s.d}, nil
}

// WriteChecksum computes the checksum over container (which must have
// its payload, i.e. everything from byte 20 onward, already in place)
// and writes the four words into bytes 4..20.
func WriteChecksum(container []byte) error {
	words, err := Checksum(container)
	if err != nil {
		return err
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(container[4+i*4:], w)
	}
	return nil
}
