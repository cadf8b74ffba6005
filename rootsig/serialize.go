package rootsig

import (
	"github.com/gogpu/vkd3d-shader/dxbc"
	"github.com/gogpu/vkd3d-shader/vkerr"
)

// Serialize builds a complete DXBC container with a single RTS0 chunk
// holding rs's payload (spec §4.5 "Serialise"). The container checksum
// is computed and written over the finished bytes.
func Serialize(rs *RootSignature) ([]byte, error) {
	payload, err := serializePayload(rs)
	if err != nil {
		return nil, err
	}
	return dxbc.Build([]dxbc.Chunk{{Tag: "RTS0", Payload: payload}})
}

// serializePayload lays out the raw RTS0 payload: header, parameter
// pointer array, parameter bodies (each descriptor table's range array
// directly after its own body), static-sampler array — offsets are
// patched back in once each section's position is known.
func serializePayload(rs *RootSignature) ([]byte, error) {
	if !rs.Version.valid() {
		return nil, errVersion("rootsig.Serialize")
	}

	w := dxbc.NewWriter()
	w.WriteU32(uint32(rs.Version))
	w.WriteU32(uint32(len(rs.Parameters)))
	paramsOffsetSlot := w.WriteU32(0)
	w.WriteU32(uint32(len(rs.Samplers)))
	samplersOffsetSlot := w.WriteU32(0)
	w.WriteU32(uint32(rs.Flags))

	if len(rs.Parameters) > 0 {
		w.PatchU32(paramsOffsetSlot, w.Len())
		if err := writeParameters(w, rs.Version, rs.Parameters); err != nil {
			return nil, err
		}
	}

	if len(rs.Samplers) > 0 {
		w.PatchU32(samplersOffsetSlot, w.Len())
		writeSamplers(w, rs.Version, rs.Samplers)
	}

	return w.Bytes(), nil
}

func writeParameters(w *dxbc.Writer, version Version, params []RootParameter) error {
	// Pointer array first; bodies are appended after and their offsets
	// patched back into the pointer array slots.
	bodyOffsetSlots := make([]uint32, len(params))
	for i, p := range params {
		w.WriteU32(uint32(p.Type))
		w.WriteU32(uint32(p.Visibility))
		bodyOffsetSlots[i] = w.WriteU32(0)
	}

	for i, p := range params {
		w.PatchU32(bodyOffsetSlots[i], w.Len())

		switch p.Type {
		case ParameterDescriptorTable:
			if err := writeDescriptorTable(w, version, p.Table); err != nil {
				return err
			}
		case ParameterConstants:
			w.WriteU32(p.Constants.Register)
			w.WriteU32(p.Constants.Space)
			w.WriteU32(p.Constants.Count)
		case ParameterCBV, ParameterSRV, ParameterUAV:
			w.WriteU32(p.Descriptor.Register)
			w.WriteU32(p.Descriptor.Space)
			if version != Version1_0 {
				w.WriteU32(uint32(p.Descriptor.Flags))
			}
		default:
			return vkerr.New(vkerr.InvalidArgument, "rootsig.writeParameters", "unrecognised parameter type")
		}
	}

	return nil
}

func writeDescriptorTable(w *dxbc.Writer, version Version, table *DescriptorTable) error {
	w.WriteU32(uint32(len(table.Ranges)))
	rangesOffsetSlot := w.WriteU32(0)
	w.PatchU32(rangesOffsetSlot, w.Len())

	for _, rng := range table.Ranges {
		w.WriteU32(uint32(rng.Type))
		w.WriteU32(rng.Count)
		w.WriteU32(rng.BaseReg)
		w.WriteU32(rng.Space)
		if version != Version1_0 {
			w.WriteU32(uint32(rng.Flags))
		}
		w.WriteU32(rng.TableOffset)
	}
	return nil
}

func writeSamplers(w *dxbc.Writer, version Version, samplers []StaticSampler) {
	for _, s := range samplers {
		w.WriteU32(uint32(s.Filter))
		w.WriteU32(uint32(s.AddressU))
		w.WriteU32(uint32(s.AddressV))
		w.WriteU32(uint32(s.AddressW))
		w.WriteF32(s.MipLODBias)
		w.WriteU32(s.MaxAnisotropy)
		w.WriteU32(uint32(s.ComparisonFunc))
		w.WriteU32(uint32(s.BorderColor))
		w.WriteF32(s.MinLOD)
		w.WriteF32(s.MaxLOD)
		w.WriteU32(s.Register)
		w.WriteU32(s.Space)
		w.WriteU32(uint32(s.Visibility))
		if version == Version1_2 {
			w.WriteU32(uint32(s.Flags))
		}
	}
}
