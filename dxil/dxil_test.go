package dxil

import "testing"

func TestFillDefaults_LeavesExplicitCallbacksUntouched(t *testing.T) {
	called := false
	explicit := func(space, register uint32) Binding {
		called = true
		return Binding{Set: 3, Binding: 7}
	}
	r := RemapCallbacks{SRV: explicit}.fillDefaults()

	if got := r.SRV(1, 2); got != (Binding{Set: 3, Binding: 7}) || !called {
		t.Fatalf("explicit SRV callback not preserved, got %+v", got)
	}
}

func TestFillDefaults_FillsNilFieldsWithIdentityRemap(t *testing.T) {
	r := RemapCallbacks{}.fillDefaults()

	fields := []RemapFunc{r.SRV, r.Sampler, r.CBV, r.UAV, r.VertexInput, r.StreamOutput}
	for i, f := range fields {
		if f == nil {
			t.Fatalf("field %d left nil", i)
		}
		got := f(5, 9)
		want := Binding{Set: 5, Binding: 9}
		if got != want {
			t.Fatalf("field %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestNoopRemap_IsIdentity(t *testing.T) {
	got := noopRemap(12, 34)
	want := Binding{Set: 12, Binding: 34}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPackBinding_RoundTripsThroughBitLayout(t *testing.T) {
	b := Binding{Set: 0xdead, Binding: 0xbeef}
	packed := packBinding(b)

	gotSet := uint32(uint64(packed) >> 32)
	gotBinding := uint32(uint64(packed) & 0xffffffff)
	if gotSet != b.Set || gotBinding != b.Binding {
		t.Fatalf("packBinding round trip failed: got set=%x binding=%x", gotSet, gotBinding)
	}
}

func TestItoa_HandlesZeroPositiveAndNegative(t *testing.T) {
	cases := map[int32]string{0: "0", 42: "42", -7: "-7", -123456: "-123456"}
	for in, want := range cases {
		if got := itoa(in); got != want {
			t.Fatalf("itoa(%d) = %q, want %q", in, got, want)
		}
	}
}
