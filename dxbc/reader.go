// Package dxbc implements the DXBC container codec (C1–C4): bounds-
// checked byte I/O, the D3D custom MD5-variant checksum, the chunked
// container parser, and the input/output/patch-constant signature
// parser. Grounded on IntuitionEngine's vgm_parser.go (chunked container
// walking over a byte slice with manual offset arithmetic) and naga's
// spirv.InstructionBuilder word-packing discipline for the writer half.
package dxbc

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/vkd3d-shader/vkerr"
)

// RequireSpace implements the overflow-safe bounds check from spec §4.1:
// count == 0 || (total-offset)/count >= elementSize.
func RequireSpace(offset, count, elementSize, total uint32) bool {
	if count == 0 {
		return true
	}
	if offset > total {
		return false
	}
	return (total-offset)/count >= elementSize
}

// Reader wraps a byte slice and a cursor offset for bounds-checked
// little-endian scalar reads (spec §4.1).
type Reader struct {
	data   []byte
	offset uint32
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current read cursor.
func (r *Reader) Offset() uint32 { return r.offset }

// Len returns the total length of the underlying slice.
func (r *Reader) Len() uint32 { return uint32(len(r.data)) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() uint32 {
	if r.offset > uint32(len(r.data)) {
		return 0
	}
	return uint32(len(r.data)) - r.offset
}

// Bytes returns the full backing slice (for sub-slicing chunk payloads).
func (r *Reader) Bytes() []byte { return r.data }

func (r *Reader) checkSpace(count, elementSize uint32) error {
	if !RequireSpace(r.offset, count, elementSize, uint32(len(r.data))) {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Reader", "read past end of buffer")
	}
	return nil
}

// ReadU32 reads one little-endian uint32 and advances the cursor.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.checkSpace(1, 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadF32 reads one little-endian float32 and advances the cursor.
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadU64 reads one little-endian uint64 and advances the cursor.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.checkSpace(1, 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return v, nil
}

// ReadU16 reads one little-endian uint16 and advances the cursor.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.checkSpace(1, 2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

// ReadBytes reads n raw bytes and advances the cursor.
func (r *Reader) ReadBytes(n uint32) ([]byte, error) {
	if err := r.checkSpace(1, n); err != nil {
		return nil, err
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

// ReadTag reads a 4-byte ASCII tag (e.g. "DXBC", "RTS0") without any
// endian conversion — tags are compared byte-for-byte.
func (r *Reader) ReadTag() (string, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes, bounds-checked.
func (r *Reader) Skip(n uint32) error {
	if err := r.checkSpace(1, n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

// SeekTo repositions the cursor to an absolute offset, bounds-checked
// against the slice length (not the current remaining space).
func (r *Reader) SeekTo(offset uint32) error {
	if offset > uint32(len(r.data)) {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Reader.SeekTo", "offset out of range")
	}
	r.offset = offset
	return nil
}

// GetCString returns the NUL-terminated byte slice starting at offset
// within the reader's backing data, or *invalid argument* if no NUL is
// found within the slice (spec §4.1).
func (r *Reader) GetCString(offset uint32) (string, error) {
	if offset > uint32(len(r.data)) {
		return "", vkerr.New(vkerr.InvalidArgument, "dxbc.Reader.GetCString", "offset out of range")
	}
	for i := offset; i < uint32(len(r.data)); i++ {
		if r.data[i] == 0 {
			return string(r.data[offset:i]), nil
		}
	}
	return "", vkerr.New(vkerr.InvalidArgument, "dxbc.Reader.GetCString", "no NUL terminator within bounds")
}
