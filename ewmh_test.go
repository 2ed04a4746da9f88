package main

import "testing"

func TestRemoveFromList(t *testing.T) {
	tests := []struct {
		name string
		list []uint32
		w    uint32
		want []uint32
	}{
		{"middle", []uint32{1, 2, 3}, 2, []uint32{1, 3}},
		{"first", []uint32{1, 2, 3}, 1, []uint32{2, 3}},
		{"last", []uint32{1, 2, 3}, 3, []uint32{1, 2}},
		{"absent", []uint32{1, 2, 3}, 4, []uint32{1, 2, 3}},
		{"empty", nil, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removeFromList(append([]uint32(nil), tt.list...), tt.w)
			if len(got) != len(tt.want) {
				t.Fatalf("removeFromList = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("removeFromList = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestU32Roundtrip(t *testing.T) {
	in := []uint32{0, 1, 0xdeadbeef, 1 << 31}
	out := u32slice(u32bytes(in...))
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("index %d: got %#x, want %#x", i, out[i], in[i])
		}
	}
}
