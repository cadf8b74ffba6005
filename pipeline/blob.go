package pipeline

import (
	"bytes"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

// Chunk is one type-length-value entry in a pipeline blob (spec §3).
// Type's upper 16 bits may carry a pipeline-stage index; StageIndex and
// Type are folded together into the wire Type field on write.
type Chunk struct {
	Type       uint32
	StageIndex uint16
	Data       []byte
}

func (c Chunk) wireType() uint32 {
	return (c.Type & chunkTypeMask) | (uint32(c.StageIndex) << 16)
}

// BuildBlob serialises a pipeline-cache blob (spec §3 "Pipeline blob"):
// a fixed header followed by 8-byte-aligned TLV chunks. The checksum
// covers every byte from vkd3dBuild through the final chunk.
func BuildBlob(cfg Config, chunks []Chunk) []byte {
	body := dxbc.NewWriter()
	body.WriteU64(cfg.BuildTag)
	body.WriteU64(cfg.ShaderInterfaceKey)
	body.WriteBytes(cfg.UUID[:])
	for _, c := range chunks {
		body.WriteU32(c.wireType())
		body.WriteU32(uint32(len(c.Data)))
		body.WriteBytes(c.Data)
		body.Align8()
	}

	w := dxbc.NewWriter()
	w.WriteBytes([]byte(blobMagic))
	w.WriteU32(cfg.VendorID)
	w.WriteU32(cfg.DeviceID)
	w.WriteU64(hashBytes(body.Bytes()))
	w.WriteBytes(body.Bytes())
	return w.Bytes()
}

// ParseBlob validates and decodes a pipeline blob against cfg, in the
// verification order spec §4.8 names: magic/version, vendor/device id,
// build tag, shader-interface key, pipelineCacheUUID, checksum, then the
// PSO-compat record.
func ParseBlob(data []byte, cfg Config) ([]Chunk, error) {
	r := dxbc.NewReader(data)

	magic, err := r.ReadBytes(4)
	if err != nil || !bytes.Equal(magic, []byte(blobMagic)) {
		return nil, errInvalid("pipeline.ParseBlob", "bad magic")
	}
	vendorID, err := r.ReadU32()
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	deviceID, err := r.ReadU32()
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	if vendorID != cfg.VendorID || deviceID != cfg.DeviceID {
		return nil, errAdapterNotFound("pipeline.ParseBlob", "vendor/device id mismatch")
	}

	checksum, err := r.ReadU64()
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	body := data[r.Offset():]
	if hashBytes(body) != checksum {
		return nil, errDriverMismatch("pipeline.ParseBlob", "checksum mismatch")
	}

	buildTag, err := r.ReadU64()
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	shaderInterfaceKey, err := r.ReadU64()
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	uuid, err := r.ReadBytes(16)
	if err != nil {
		return nil, errInvalid("pipeline.ParseBlob", "truncated header")
	}
	if buildTag != cfg.BuildTag || shaderInterfaceKey != cfg.ShaderInterfaceKey || !bytes.Equal(uuid, cfg.UUID[:]) {
		return nil, errDriverMismatch("pipeline.ParseBlob", "build tag/shader-interface-key/UUID mismatch")
	}

	var chunks []Chunk
	sawCompatRecord := false
	for r.Remaining() > 0 {
		wireType, err := r.ReadU32()
		if err != nil {
			return nil, errInvalid("pipeline.ParseBlob", "truncated chunk header")
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, errInvalid("pipeline.ParseBlob", "truncated chunk header")
		}
		payload, err := r.ReadBytes(size)
		if err != nil {
			return nil, errInvalid("pipeline.ParseBlob", "truncated chunk payload")
		}
		typ := wireType & chunkTypeMask
		if typ == chunkTypeCompatRecord {
			if size < 8*(2+MaxStages) {
				return nil, errDriverMismatch("pipeline.ParseBlob", "PSO-compat chunk shorter than expected")
			}
			sawCompatRecord = true
		}
		chunks = append(chunks, Chunk{Type: typ, StageIndex: uint16(wireType >> 16), Data: payload})

		pad := (8 - size%8) % 8
		if pad > 0 {
			if _, err := r.ReadBytes(pad); err != nil {
				return nil, errInvalid("pipeline.ParseBlob", "truncated chunk padding")
			}
		}
	}
	if !sawCompatRecord {
		return nil, errDriverMismatch("pipeline.ParseBlob", "missing PSO-compat chunk")
	}
	return chunks, nil
}

// EncodeCompatRecord serialises a CompatRecord as a chunk payload.
func EncodeCompatRecord(rec CompatRecord) []byte {
	w := dxbc.NewWriter()
	w.WriteU64(rec.StateDescHash)
	w.WriteU64(rec.RootSignatureHash)
	for _, h := range rec.DXBCStageHashes {
		w.WriteU64(h)
	}
	return w.Bytes()
}

// DecodeCompatRecord reverses EncodeCompatRecord.
func DecodeCompatRecord(data []byte) (CompatRecord, error) {
	r := dxbc.NewReader(data)
	var rec CompatRecord
	var err error
	if rec.StateDescHash, err = r.ReadU64(); err != nil {
		return CompatRecord{}, errInvalid("pipeline.DecodeCompatRecord", "truncated record")
	}
	if rec.RootSignatureHash, err = r.ReadU64(); err != nil {
		return CompatRecord{}, errInvalid("pipeline.DecodeCompatRecord", "truncated record")
	}
	for i := range rec.DXBCStageHashes {
		if rec.DXBCStageHashes[i], err = r.ReadU64(); err != nil {
			return CompatRecord{}, errInvalid("pipeline.DecodeCompatRecord", "truncated record")
		}
	}
	return rec, nil
}
