package rootsig

import (
	"hash/fnv"

	"github.com/gogpu/vkd3d-shader/dxbc"
	"github.com/gogpu/vkd3d-shader/vkerr"
)

// ContentHash is the FNV-1a hash of raw root-signature payload bytes,
// used to compare root signatures for pipeline-compatibility purposes
// (spec §4.5, §4.8) without needing to re-parse them.
func ContentHash(payload []byte) uint64 {
	h := fnv.New64a()
	h.Write(payload)
	return h.Sum64()
}

// Parse decodes a raw root-signature payload (the contents of an RTS0
// chunk) per spec §4.5.
func Parse(payload []byte) (*RootSignature, error) {
	r := dxbc.NewReader(payload)

	versionWord, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}
	version := Version(versionWord)
	if !version.valid() {
		return nil, errVersion("rootsig.Parse")
	}

	paramCount, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}
	paramsOffset, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}
	samplerCount, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}
	samplersOffset, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}
	flagsWord, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.Parse", err)
	}

	rs := &RootSignature{
		Version:     version,
		Flags:       Flags(flagsWord),
		ContentHash: ContentHash(payload),
	}

	rs.Parameters, err = parseParameters(payload, version, paramsOffset, paramCount)
	if err != nil {
		return nil, err
	}
	rs.Samplers, err = parseSamplers(payload, version, samplersOffset, samplerCount)
	if err != nil {
		return nil, err
	}

	return rs, nil
}

func parseParameters(payload []byte, version Version, offset, count uint32) ([]RootParameter, error) {
	if !dxbc.RequireSpace(offset, count, 12, uint32(len(payload))) {
		return nil, vkerr.New(vkerr.InvalidArgument, "rootsig.parseParameters", "parameter array exceeds payload")
	}

	params := make([]RootParameter, count)
	pr := dxbc.NewReader(payload)
	if err := pr.SeekTo(offset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseParameters", err)
	}

	for i := uint32(0); i < count; i++ {
		typeWord, err := pr.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseParameters", err)
		}
		visWord, err := pr.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseParameters", err)
		}
		bodyOffset, err := pr.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseParameters", err)
		}

		p := RootParameter{Type: ParameterType(typeWord), Visibility: ShaderVisibility(visWord)}

		switch p.Type {
		case ParameterDescriptorTable:
			table, err := parseDescriptorTable(payload, version, bodyOffset)
			if err != nil {
				return nil, err
			}
			p.Table = table
		case ParameterConstants:
			c, err := parseRootConstants(payload, bodyOffset)
			if err != nil {
				return nil, err
			}
			p.Constants = c
		case ParameterCBV, ParameterSRV, ParameterUAV:
			d, err := parseRootDescriptor(payload, version, bodyOffset)
			if err != nil {
				return nil, err
			}
			p.Descriptor = d
		default:
			return nil, vkerr.New(vkerr.InvalidArgument, "rootsig.parseParameters", "unrecognised parameter type")
		}

		params[i] = p
	}

	return params, nil
}

func parseDescriptorTable(payload []byte, version Version, offset uint32) (*DescriptorTable, error) {
	tr := dxbc.NewReader(payload)
	if err := tr.SeekTo(offset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
	}
	rangeCount, err := tr.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
	}
	rangesOffset, err := tr.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
	}

	rangeWords := uint32(5)
	if version != Version1_0 {
		rangeWords = 6
	}
	if !dxbc.RequireSpace(rangesOffset, rangeCount, rangeWords*4, uint32(len(payload))) {
		return nil, vkerr.New(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", "range array exceeds payload")
	}

	rr := dxbc.NewReader(payload)
	if err := rr.SeekTo(rangesOffset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
	}

	ranges := make([]DescriptorRange, rangeCount)
	for i := uint32(0); i < rangeCount; i++ {
		var rng DescriptorRange

		typeWord, err := rr.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
		}
		rng.Type = RangeType(typeWord)

		if rng.Count, err = rr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
		}
		if rng.BaseReg, err = rr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
		}
		if rng.Space, err = rr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
		}

		if version != Version1_0 {
			flagsWord, err := rr.ReadU32()
			if err != nil {
				return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
			}
			rng.Flags = DescriptorRangeFlags(flagsWord)
		}

		if rng.TableOffset, err = rr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseDescriptorTable", err)
		}

		ranges[i] = rng
	}

	return &DescriptorTable{Ranges: ranges}, nil
}

func parseRootConstants(payload []byte, offset uint32) (*RootConstants, error) {
	r := dxbc.NewReader(payload)
	if err := r.SeekTo(offset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootConstants", err)
	}
	reg, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootConstants", err)
	}
	space, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootConstants", err)
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootConstants", err)
	}
	return &RootConstants{Register: reg, Space: space, Count: count}, nil
}

func parseRootDescriptor(payload []byte, version Version, offset uint32) (*RootDescriptor, error) {
	r := dxbc.NewReader(payload)
	if err := r.SeekTo(offset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootDescriptor", err)
	}
	reg, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootDescriptor", err)
	}
	space, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootDescriptor", err)
	}

	d := &RootDescriptor{Register: reg, Space: space}
	if version != Version1_0 {
		flagsWord, err := r.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseRootDescriptor", err)
		}
		d.Flags = RootDescriptorFlags(flagsWord)
	}
	return d, nil
}

func parseSamplers(payload []byte, version Version, offset, count uint32) ([]StaticSampler, error) {
	wordsPerSampler := uint32(13)
	if version == Version1_2 {
		wordsPerSampler = 14
	}
	if !dxbc.RequireSpace(offset, count, wordsPerSampler*4, uint32(len(payload))) {
		return nil, vkerr.New(vkerr.InvalidArgument, "rootsig.parseSamplers", "sampler array exceeds payload")
	}

	sr := dxbc.NewReader(payload)
	if err := sr.SeekTo(offset); err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
	}

	samplers := make([]StaticSampler, count)
	for i := uint32(0); i < count; i++ {
		var s StaticSampler
		var err error

		var word uint32
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.Filter = Filter(word)
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.AddressU = AddressMode(word)
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.AddressV = AddressMode(word)
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.AddressW = AddressMode(word)
		if s.MipLODBias, err = sr.ReadF32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if s.MaxAnisotropy, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.ComparisonFunc = ComparisonFunc(word)
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.BorderColor = StaticBorderColor(word)
		if s.MinLOD, err = sr.ReadF32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if s.MaxLOD, err = sr.ReadF32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if s.Register, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if s.Space, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		if word, err = sr.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
		}
		s.Visibility = ShaderVisibility(word)

		if version == Version1_2 {
			if word, err = sr.ReadU32(); err != nil {
				return nil, vkerr.Wrap(vkerr.InvalidArgument, "rootsig.parseSamplers", err)
			}
			s.Flags = StaticSamplerFlags(word)
		}

		samplers[i] = s
	}

	return samplers, nil
}
