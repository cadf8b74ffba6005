package dxbc

import "github.com/gogpu/vkd3d-shader/vkerr"

// SignatureRowLayout distinguishes the three row shapes a signature
// chunk can use, selected by the chunk's tag (spec §4.4).
type SignatureRowLayout int

const (
	// RowV0 is used by ISGN/OSGN/PCSG: no stream index, no min precision.
	RowV0 SignatureRowLayout = iota
	// RowV5 is used by OSG5: explicit stream index, no min precision.
	RowV5
	// RowV1 is used by ISG1/OSG1/PSG1: explicit stream index and min precision.
	RowV1
)

func rowLayoutForTag(tag string) (SignatureRowLayout, bool) {
	switch tag {
	case "ISGN", "OSGN", "PCSG":
		return RowV0, true
	case "OSG5":
		return RowV5, true
	case "ISG1", "OSG1", "PSG1":
		return RowV1, true
	default:
		return 0, false
	}
}

// SignatureElement is one decoded row of an input/output/patch-constant
// signature chunk.
type SignatureElement struct {
	StreamIndex    uint32
	Name           string
	SemanticIndex  uint32
	SysValSemantic uint32
	ComponentType  uint32
	RegisterIndex  uint32
	Mask           uint32
	MinPrecision   uint32
}

// Signature is the decoded contents of one ISGN/ISG1/OSGN/OSG5/OSG1/
// PCSG/PSG1 chunk.
type Signature struct {
	Elements []SignatureElement
}

// ParseSignature decodes a signature chunk payload given its chunk tag
// (spec §4.4). Name offsets are resolved relative to the start of the
// payload, not the container.
func ParseSignature(tag string, payload []byte) (*Signature, error) {
	layout, ok := rowLayoutForTag(tag)
	if !ok {
		return nil, vkerr.New(vkerr.InvalidArgument, "dxbc.ParseSignature", "unrecognised signature tag: "+tag)
	}

	r := NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
	}
	if _, err := r.ReadU32(); err != nil { // ignored header word
		return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
	}

	wordsPerRow := uint32(6)
	if layout != RowV0 {
		wordsPerRow = 7
	}
	if !RequireSpace(r.Offset(), count, wordsPerRow*4, uint32(len(payload))) {
		return nil, vkerr.New(vkerr.InvalidArgument, "dxbc.ParseSignature", "row array exceeds chunk")
	}

	sig := &Signature{Elements: make([]SignatureElement, count)}
	for i := uint32(0); i < count; i++ {
		var e SignatureElement

		if layout != RowV0 {
			streamIndex, err := r.ReadU32()
			if err != nil {
				return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
			}
			e.StreamIndex = streamIndex
		}

		nameOffset, err := r.ReadU32()
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		name, err := r.GetCString(nameOffset)
		if err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		e.Name = name

		if e.SemanticIndex, err = r.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		if e.SysValSemantic, err = r.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		if e.ComponentType, err = r.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		if e.RegisterIndex, err = r.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}
		if e.Mask, err = r.ReadU32(); err != nil {
			return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
		}

		if layout == RowV1 {
			if e.MinPrecision, err = r.ReadU32(); err != nil {
				return nil, vkerr.Wrap(vkerr.InvalidArgument, "dxbc.ParseSignature", err)
			}
		}

		sig.Elements[i] = e
	}

	return sig, nil
}

// SignatureSet holds the three signature kinds a shader can carry.
// Duplicate chunks for the same kind are tolerated: per spec §4.4, the
// later chunk in directory order replaces the earlier one, which
// Absorb implements simply by overwriting the prior pointer.
type SignatureSet struct {
	Input         *Signature
	Output        *Signature
	PatchConstant *Signature
}

// Absorb decodes and stores a signature chunk into the set, replacing
// any previously stored signature of the same kind.
func (s *SignatureSet) Absorb(tag string, payload []byte) error {
	sig, err := ParseSignature(tag, payload)
	if err != nil {
		return err
	}

	switch tag {
	case "ISGN", "ISG1":
		s.Input = sig
	case "OSGN", "OSG5", "OSG1":
		s.Output = sig
	case "PCSG", "PSG1":
		s.PatchConstant = sig
	}
	return nil
}
