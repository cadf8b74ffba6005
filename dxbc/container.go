package dxbc

import (
	"github.com/gogpu/vkd3d-shader/vkerr"
)

// Magic is the 4-byte tag every DXBC container starts with.
const Magic = "DXBC"

// SupportedVersion is the only container version this parser accepts.
const SupportedVersion = 0x00000001

// containerHeaderSize is the byte size of the fixed header: magic (4) +
// checksum (16) + version (4) + total size (4) + chunk count (4).
const containerHeaderSize = 32

// ChunkHandler is invoked once per chunk, in directory order, with the
// chunk's tag, its payload slice, and the full container data (for
// handlers that need to resolve offsets relative to the container).
// Returning a non-nil error aborts iteration
// and that error is propagated to the Parse caller.
type ChunkHandler func(tag string, payload []byte, container []byte) error

// Parse validates the DXBC magic, version and chunk directory of data,
// then invokes handler once per chunk in directory order (C3). A
// handler error aborts iteration and is returned as-is.
func Parse(data []byte, handler ChunkHandler) error {
	r := NewReader(data)

	tag, err := r.ReadTag()
	if err != nil {
		return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
	}
	if tag != Magic {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Parse", "bad magic: "+tag)
	}

	if _, err := r.ReadBytes(ChecksumSize); err != nil {
		return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
	}

	version, err := r.ReadU32()
	if err != nil {
		return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
	}
	if version != SupportedVersion {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Parse", "unsupported container version")
	}

	totalSize, err := r.ReadU32()
	if err != nil {
		return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
	}
	if totalSize > uint32(len(data)) {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Parse", "total size exceeds buffer")
	}

	chunkCount, err := r.ReadU32()
	if err != nil {
		return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
	}

	if !RequireSpace(r.Offset(), chunkCount, 4, uint32(len(data))) {
		return vkerr.New(vkerr.InvalidArgument, "dxbc.Parse", "chunk directory exceeds buffer")
	}

	offsets := make([]uint32, chunkCount)
	for i := range offsets {
		off, err := r.ReadU32()
		if err != nil {
			return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
		}
		offsets[i] = off
	}

	for _, off := range offsets {
		if off > uint32(len(data)) {
			return vkerr.New(vkerr.InvalidArgument, "dxbc.Parse", "chunk offset out of range")
		}
		cr := NewReader(data)
		if err := cr.SeekTo(off); err != nil {
			return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
		}
		chunkTag, err := cr.ReadTag()
		if err != nil {
			return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
		}
		size, err := cr.ReadU32()
		if err != nil {
			return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
		}
		payload, err := cr.ReadBytes(size)
		if err != nil {
			return vkerr.Wrap(vkerr.InvalidArgument, "dxbc.Parse", err)
		}
		if err := handler(chunkTag, payload, data); err != nil {
			return err
		}
	}

	return nil
}

// Build assembles a DXBC container from the given chunks (tag, payload
// pairs, in the order they should appear in the directory), computes
// the chunk directory and total size, and writes the checksum over the
// finished container (§4.2).
func Build(chunks []Chunk) ([]byte, error) {
	w := NewWriter()
	w.WriteBytes([]byte(Magic))
	w.WriteBytes(make([]byte, ChecksumSize))
	w.WriteU32(SupportedVersion)
	totalSizeOff := w.WriteU32(0)
	w.WriteU32(uint32(len(chunks)))

	offsetSlots := make([]uint32, len(chunks))
	for i := range chunks {
		offsetSlots[i] = w.WriteU32(0)
	}

	for i, c := range chunks {
		w.PatchU32(offsetSlots[i], w.Len())
		w.WriteBytes([]byte(c.Tag))
		w.WriteU32(uint32(len(c.Payload)))
		w.WriteBytes(c.Payload)
	}

	w.PatchU32(totalSizeOff, w.Len())

	out := w.Bytes()
	if err := WriteChecksum(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chunk is a single (tag, payload) pair as laid out in a container's
// chunk directory.
type Chunk struct {
	Tag     string
	Payload []byte
}
