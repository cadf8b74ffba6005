package pipeline

// StateDesc is the subset of a D3D12 pipeline-state description that
// participates in PSO-compatibility hashing (spec §4.8: "blend /
// depth-stencil / rasterizer / input-layout / stream-output / RT-format
// / sample / view-instancing / flags / node-mask"). Sub-structures this
// package does not otherwise model are carried as their raw encoded
// bytes, since only their hash — never their contents — is load-bearing
// for this component.
type StateDesc struct {
	Blend             []byte
	DepthStencil      []byte
	Rasterizer        []byte
	InputLayout       []byte
	StreamOutput      []byte
	RTFormats         []uint32
	SampleCount       uint32
	SampleQuality     uint32
	ViewInstanceCount uint32
	Flags             uint32
	NodeMask          uint32
}

// hash rolls every field of the description into one FNV-1-64 value, in
// the fixed field order spec §4.8 lists, with string/byte fields hashed
// byte-wise.
func (s StateDesc) hash() uint64 {
	h := newContentHash()
	hashWriteString(h, string(s.Blend))
	hashWriteString(h, string(s.DepthStencil))
	hashWriteString(h, string(s.Rasterizer))
	hashWriteString(h, string(s.InputLayout))
	hashWriteString(h, string(s.StreamOutput))
	hashWriteU32(h, uint32(len(s.RTFormats)))
	for _, f := range s.RTFormats {
		hashWriteU32(h, f)
	}
	hashWriteU32(h, s.SampleCount)
	hashWriteU32(h, s.SampleQuality)
	hashWriteU32(h, s.ViewInstanceCount)
	hashWriteU32(h, s.Flags)
	hashWriteU32(h, s.NodeMask)
	return h.Sum64()
}

// CompatRecord is the three-part pipeline-compatibility key spec §4.8
// requires every stored pipeline to carry: a hash of the non-shader
// state description, the bound root signature's content hash, and a
// per-stage hash of the shader DXBC bytes.
type CompatRecord struct {
	StateDescHash     uint64
	RootSignatureHash uint64
	DXBCStageHashes   [MaxStages]uint64
}

// NewCompatRecord builds a CompatRecord from a state description, the
// bound root signature's content hash (from rootsig.Parse — or, when no
// root signature is bound, the hash the stored PSO itself recorded, per
// spec §4.8 "so PSOs with identical DXBC-derived implicit root
// signatures match"), and the per-stage DXBC bytes in stage order.
func NewCompatRecord(state StateDesc, rootSignatureHash uint64, stageDXBC [][]byte) CompatRecord {
	var rec CompatRecord
	rec.StateDescHash = state.hash()
	rec.RootSignatureHash = rootSignatureHash
	for i, dxbc := range stageDXBC {
		if i >= MaxStages {
			break
		}
		if dxbc == nil {
			continue
		}
		rec.DXBCStageHashes[i] = mixHash(hashBytes(dxbc), i)
	}
	return rec
}

// Equal reports whether two compat records match byte-exactly, per
// spec §4.8 "on load, all three must match byte-exactly or the library
// returns invalid argument".
func (r CompatRecord) Equal(other CompatRecord) bool {
	if r.StateDescHash != other.StateDescHash || r.RootSignatureHash != other.RootSignatureHash {
		return false
	}
	return r.DXBCStageHashes == other.DXBCStageHashes
}
