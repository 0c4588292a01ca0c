package osc

import "testing"

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := message{Address: "/dbaudio1/matrixinput/gain/1", Tags: "f", Floats: []float32{-6.5}}
	raw := marshal(m)

	got, err := unmarshal(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Address != m.Address {
		t.Fatalf("address = %q, want %q", got.Address, m.Address)
	}
	if len(got.Floats) != 1 || got.Floats[0] != -6.5 {
		t.Fatalf("floats = %v, want [-6.5]", got.Floats)
	}
}

func TestMarshalUnmarshalMultiArg(t *testing.T) {
	m := message{
		Address: "/dbaudio1/positioning/source_position_xy",
		Tags:    "ff",
		Floats:  []float32{0.25, 0.75},
	}
	got, err := unmarshal(marshal(m))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Floats) != 2 || got.Floats[0] != 0.25 || got.Floats[1] != 0.75 {
		t.Fatalf("floats = %v, want [0.25 0.75]", got.Floats)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	if _, err := unmarshal([]byte{0, 0, 0, 0}); err == nil {
		t.Fatal("expected error on truncated/invalid packet")
	}
}

func TestPad4(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 3: 4, 4: 4, 5: 8}
	for in, want := range cases {
		if got := pad4(in); got != want {
			t.Fatalf("pad4(%d) = %d, want %d", in, got, want)
		}
	}
}
