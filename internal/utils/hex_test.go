package utils

import "testing"

func TestHex4(t *testing.T) {
	tests := []struct {
		in   uint16
		want string
	}{
		{0x0000, "0000"},
		{0x00FF, "00FF"},
		{0xABCD, "ABCD"},
		{0xFFFF, "FFFF"},
	}
	for _, tt := range tests {
		if got := Hex4(tt.in); got != tt.want {
			t.Errorf("Hex4(%#04x) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBytesToHex(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: nil, want: ""},
		{name: "single", in: []byte{0x0A}, want: "0A"},
		{name: "multiple", in: []byte{0x01, 0xD0, 0xFF}, want: "01D0FF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesToHex(tt.in); got != tt.want {
				t.Errorf("BytesToHex(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexDump(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: nil, want: ""},
		{name: "single", in: []byte{0x0A}, want: "0A"},
		{name: "multiple", in: []byte{0x01, 0xD0, 0xFF}, want: "01 D0 FF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HexDump(tt.in); got != tt.want {
				t.Errorf("HexDump(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
