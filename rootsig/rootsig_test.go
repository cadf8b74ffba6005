package rootsig

import (
	"testing"

	"github.com/gogpu/vkd3d-shader/dxbc"
)

func minimalV1_0() *RootSignature {
	return &RootSignature{
		Version: Version1_0,
		Parameters: []RootParameter{
			{
				Type:       ParameterDescriptorTable,
				Visibility: VisibilityAll,
				Table: &DescriptorTable{
					Ranges: []DescriptorRange{
						{Type: RangeCBV, Count: 1, BaseReg: 0, Space: 0},
					},
				},
			},
		},
	}
}

func TestSerializeParse_RoundTrip(t *testing.T) {
	rs := minimalV1_0()
	container, err := Serialize(rs)
	if err != nil {
		t.Fatal(err)
	}

	var payload []byte
	err = dxbc.Parse(container, func(tag string, chunkPayload, _ []byte) error {
		if tag == "RTS0" {
			payload = append([]byte(nil), chunkPayload...)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Parameters) != 1 {
		t.Fatalf("got %d parameters, want 1", len(got.Parameters))
	}
	if got.Parameters[0].Table == nil || len(got.Parameters[0].Table.Ranges) != 1 {
		t.Fatal("expected one descriptor range")
	}
	rng := got.Parameters[0].Table.Ranges[0]
	if rng.Type != RangeCBV || rng.Count != 1 {
		t.Errorf("got %+v, want CBV count=1", rng)
	}
}

func TestConvert_SameVersionRejected(t *testing.T) {
	rs := minimalV1_0()
	_, err := Convert(rs, Version1_0)
	if err == nil {
		t.Fatal("expected error converting to the same version")
	}
}

func TestConvert_V1_0ToV1_1SynthesisesFlags(t *testing.T) {
	rs := minimalV1_0()
	out, err := Convert(rs, Version1_1)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Parameters[0].Table.Ranges[0].Flags
	want := RangeFlagDataVolatile | RangeFlagDescriptorsVolatile
	if got != want {
		t.Errorf("got flags %v, want %v", got, want)
	}
}

func TestConvert_V1_1ToV1_0DropsFlags(t *testing.T) {
	rs := minimalV1_0()
	v11, err := Convert(rs, Version1_1)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Convert(v11, Version1_0)
	if err != nil {
		t.Fatal(err)
	}
	if back.Parameters[0].Table.Ranges[0].Flags != RangeFlagNone {
		t.Error("expected flags dropped converting back to v1.0")
	}
}

func TestValidate_RejectsMixedDescriptorTable(t *testing.T) {
	rs := &RootSignature{
		Version: Version1_0,
		Parameters: []RootParameter{
			{
				Type: ParameterDescriptorTable,
				Table: &DescriptorTable{
					Ranges: []DescriptorRange{
						{Type: RangeCBV},
						{Type: RangeSampler},
					},
				},
			},
		},
	}
	if err := Validate(rs); err == nil {
		t.Fatal("expected error for mixed sampler/non-sampler descriptor table")
	}
}

func TestValidate_AcceptsUniformTable(t *testing.T) {
	rs := &RootSignature{
		Version: Version1_0,
		Parameters: []RootParameter{
			{
				Type: ParameterDescriptorTable,
				Table: &DescriptorTable{
					Ranges: []DescriptorRange{
						{Type: RangeSampler},
						{Type: RangeSampler},
					},
				},
			},
		},
	}
	if err := Validate(rs); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_AcceptsZeroRangeTable(t *testing.T) {
	rs := &RootSignature{
		Version: Version1_0,
		Parameters: []RootParameter{
			{Type: ParameterDescriptorTable, Table: &DescriptorTable{}},
		},
	}
	if err := Validate(rs); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSerialize_ZeroParametersAndSamplers(t *testing.T) {
	rs := &RootSignature{Version: Version1_0}
	container, err := Serialize(rs)
	if err != nil {
		t.Fatal(err)
	}
	if len(container) == 0 {
		t.Fatal("expected non-empty container")
	}
}
