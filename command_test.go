package main

import (
	"strings"
	"testing"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  string
	}{
		{"plain", []byte("close"), "close"},
		{"nul terminated", []byte("last\x00junk"), "last"},
		{"empty", nil, ""},
		{"oversized payload truncated", []byte(strings.Repeat("x", 100)), strings.Repeat("x", commandMaxLen)},
		{"exactly at the limit", []byte(strings.Repeat("y", commandMaxLen)), strings.Repeat("y", commandMaxLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeCommand(tt.value); got != tt.want {
				t.Errorf("decodeCommand(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
