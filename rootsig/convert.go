package rootsig

import "github.com/gogpu/vkd3d-shader/vkerr"

// Convert re-targets rs to a different version per spec §4.5 "Version
// conversion". Converting to the same version is an error.
//
//	v1.1 → v1.0 (lossy): drop range/descriptor flags; v1.2 sampler
//	  flags are silently dropped.
//	v1.0 → v1.1: synthesise DATA_VOLATILE|DESCRIPTORS_VOLATILE for
//	  ranges and DATA_VOLATILE for root descriptors.
//	v1.x → v1.2: parameters copy as-is (1.1 shape equals 1.2 for
//	  parameters); synthesise sampler flags = NONE.
func Convert(rs *RootSignature, to Version) (*RootSignature, error) {
	if !to.valid() {
		return nil, errVersion("rootsig.Convert")
	}
	if rs.Version == to {
		return nil, vkerr.New(vkerr.InvalidArgument, "rootsig.Convert", "cannot convert to the same version")
	}

	out := &RootSignature{
		Version:    to,
		Flags:      rs.Flags,
		Parameters: make([]RootParameter, len(rs.Parameters)),
		Samplers:   make([]StaticSampler, len(rs.Samplers)),
	}

	for i, p := range rs.Parameters {
		out.Parameters[i] = convertParameter(p, rs.Version, to)
	}
	for i, s := range rs.Samplers {
		out.Samplers[i] = convertSampler(s, rs.Version, to)
	}

	return out, nil
}

func convertParameter(p RootParameter, from, to Version) RootParameter {
	out := RootParameter{Type: p.Type, Visibility: p.Visibility}

	switch p.Type {
	case ParameterDescriptorTable:
		ranges := make([]DescriptorRange, len(p.Table.Ranges))
		for i, rng := range p.Table.Ranges {
			ranges[i] = rng
			ranges[i].Flags = convertRangeFlags(rng.Flags, from, to)
		}
		out.Table = &DescriptorTable{Ranges: ranges}
	case ParameterConstants:
		c := *p.Constants
		out.Constants = &c
	case ParameterCBV, ParameterSRV, ParameterUAV:
		d := *p.Descriptor
		d.Flags = convertDescriptorFlags(d.Flags, from, to)
		out.Descriptor = &d
	}

	return out
}

func convertRangeFlags(flags DescriptorRangeFlags, from, to Version) DescriptorRangeFlags {
	if to == Version1_0 {
		return RangeFlagNone
	}
	if from == Version1_0 {
		return RangeFlagDataVolatile | RangeFlagDescriptorsVolatile
	}
	return flags
}

func convertDescriptorFlags(flags RootDescriptorFlags, from, to Version) RootDescriptorFlags {
	if to == Version1_0 {
		return DescriptorFlagNone
	}
	if from == Version1_0 {
		return DescriptorFlagDataVolatile
	}
	return flags
}

func convertSampler(s StaticSampler, from, to Version) StaticSampler {
	out := s
	if to == Version1_2 {
		if from != Version1_2 {
			out.Flags = SamplerFlagNone
		}
	} else {
		out.Flags = SamplerFlagNone
	}
	return out
}

// Validate checks the invariants spec §4.5 requires before
// serialisation: every descriptor table must be uniform (all ranges
// samplers, or none are) and every range type must be recognised.
func Validate(rs *RootSignature) error {
	for _, p := range rs.Parameters {
		if p.Type != ParameterDescriptorTable {
			continue
		}
		if err := validateTable(p.Table); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(table *DescriptorTable) error {
	if len(table.Ranges) == 0 {
		return nil
	}

	allSamplers := table.Ranges[0].Type == RangeSampler
	for _, rng := range table.Ranges {
		switch rng.Type {
		case RangeSRV, RangeUAV, RangeCBV, RangeSampler:
		default:
			return vkerr.New(vkerr.InvalidArgument, "rootsig.Validate", "unrecognised descriptor range type")
		}
		if (rng.Type == RangeSampler) != allSamplers {
			return vkerr.New(vkerr.InvalidArgument, "rootsig.Validate", "descriptor table mixes sampler and non-sampler ranges")
		}
	}
	return nil
}
