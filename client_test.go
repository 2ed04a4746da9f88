package main

import "testing"

func TestPlaceClientMaximized(t *testing.T) {
	g := placeClient(false, 300, 200, 1920, 1080, 1)
	want := geometry{X: -1, Y: -1, Width: 1920, Height: 1080}
	if g != want {
		t.Errorf("got %+v, want %+v", g, want)
	}
}

func TestPlaceClientFloating(t *testing.T) {
	tests := []struct {
		name       string
		reqW, reqH uint16
		sw, sh, bw uint16
		want       geometry
	}{
		{
			name: "centered dialog",
			reqW: 300, reqH: 200, sw: 1920, sh: 1080, bw: 1,
			want: geometry{X: 809, Y: 439, Width: 300, Height: 200},
		},
		{
			name: "width overflows, height centered",
			reqW: 2000, reqH: 200, sw: 1920, sh: 1080, bw: 1,
			want: geometry{X: -1, Y: 439, Width: 1920, Height: 200},
		},
		{
			name: "height overflows, width centered",
			reqW: 300, reqH: 1200, sw: 1920, sh: 1080, bw: 1,
			want: geometry{X: 809, Y: -1, Width: 300, Height: 1080},
		},
		{
			name: "both overflow",
			reqW: 2000, reqH: 1200, sw: 1920, sh: 1080, bw: 1,
			want: geometry{X: -1, Y: -1, Width: 1920, Height: 1080},
		},
		{
			name: "exact fit counts as overflow",
			reqW: 1918, reqH: 1078, sw: 1920, sh: 1080, bw: 1,
			want: geometry{X: -1, Y: -1, Width: 1920, Height: 1080},
		},
		{
			name: "zero border",
			reqW: 400, reqH: 300, sw: 800, sh: 600, bw: 0,
			want: geometry{X: 200, Y: 150, Width: 400, Height: 300},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := placeClient(true, tt.reqW, tt.reqH, tt.sw, tt.sh, tt.bw)
			if g != tt.want {
				t.Errorf("got %+v, want %+v", g, tt.want)
			}
		})
	}
}

func TestFloating(t *testing.T) {
	tests := []struct {
		name   string
		client Client
		want   bool
	}{
		{"normal resizable", Client{Normal: true}, false},
		{"fixed size", Client{Normal: true, Fixed: true}, true},
		{"dialog", Client{Normal: false}, true},
		{"fixed dialog", Client{Normal: false, Fixed: true}, true},
		{"fullscreen quirk beats dialog", Client{Normal: false, fullscreen: true}, false},
		{"fullscreen quirk beats fixed", Client{Normal: true, Fixed: true, fullscreen: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.Floating(); got != tt.want {
				t.Errorf("Floating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func sizeHints(flags, minW, minH, maxW, maxH, baseW, baseH uint32) []uint32 {
	h := make([]uint32, 18)
	h[0] = flags
	h[5], h[6] = minW, minH
	h[7], h[8] = maxW, maxH
	h[15], h[16] = baseW, baseH
	return h
}

func TestFixedSizeHints(t *testing.T) {
	tests := []struct {
		name  string
		hints []uint32
		want  bool
	}{
		{"equal min and max", sizeHints(hintPMinSize|hintPMaxSize, 300, 200, 300, 200, 0, 0), true},
		{"different min and max", sizeHints(hintPMinSize|hintPMaxSize, 100, 100, 300, 200, 0, 0), false},
		{"max only", sizeHints(hintPMaxSize, 0, 0, 300, 200, 0, 0), false},
		{"base stands in for min", sizeHints(hintPMaxSize|hintPBaseSize, 0, 0, 300, 200, 300, 200), true},
		{"base differs from max", sizeHints(hintPMaxSize|hintPBaseSize, 0, 0, 300, 200, 100, 100), false},
		{"min preferred over base", sizeHints(hintPMinSize|hintPMaxSize|hintPBaseSize, 300, 200, 300, 200, 100, 100), true},
		{"no flags", sizeHints(0, 300, 200, 300, 200, 300, 200), false},
		{"truncated property", []uint32{hintPMinSize | hintPMaxSize, 0, 0}, false},
		{"empty property", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixedSizeHints(tt.hints); got != tt.want {
				t.Errorf("fixedSizeHints() = %v, want %v", got, tt.want)
			}
		})
	}
}
