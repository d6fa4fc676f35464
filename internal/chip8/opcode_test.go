package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		mnemonic string
		pattern  string
	}{
		{"cls", 0x00E0, "CLS", "00E0"},
		{"ret", 0x00EE, "RET", "00EE"},
		{"sys", 0x0FE9, "SYS", "0nnn"},
		{"jp", 0x1E13, "JP", "1nnn"},
		{"call", 0x25C1, "CALL", "2nnn"},
		{"se byte", 0x35FE, "SE", "3xkk"},
		{"sne byte", 0x4CD1, "SNE", "4xkk"},
		{"se reg", 0x51F0, "SE", "5xy0"},
		{"ld byte", 0x6D92, "LD", "6xkk"},
		{"add byte", 0x70FF, "ADD", "7xkk"},
		{"ld reg", 0x8030, "LD", "8xy0"},
		{"or", 0x8121, "OR", "8xy1"},
		{"and", 0x8512, "AND", "8xy2"},
		{"xor", 0x82A3, "XOR", "8xy3"},
		{"add reg", 0x8CF4, "ADD", "8xy4"},
		{"sub", 0x8085, "SUB", "8xy5"},
		{"shr", 0x8106, "SHR", "8x06"},
		{"shr reg", 0x81C6, "SHR", "8xy6"},
		{"subn", 0x8A67, "SUBN", "8xy7"},
		{"shl", 0x820E, "SHL", "8x0E"},
		{"shl reg", 0x821E, "SHL", "8xyE"},
		{"sne reg", 0x90E0, "SNE", "9xy0"},
		{"ld i", 0xA46E, "LD", "Annn"},
		{"jp v0", 0xBF12, "JP", "Bnnn"},
		{"rnd", 0xC4BC, "RND", "Cxkk"},
		{"drw", 0xD5FC, "DRW", "Dxyn"},
		{"skp", 0xE59E, "SKP", "Ex9E"},
		{"sknp", 0xEFA1, "SKNP", "ExA1"},
		{"ld vx dt", 0xFA07, "LD", "Fx07"},
		{"ld vx k", 0xFA0A, "LD", "Fx0A"},
		{"ld dt vx", 0xF415, "LD", "Fx15"},
		{"ld st vx", 0xF418, "LD", "Fx18"},
		{"add i", 0xFF1E, "ADD", "Fx1E"},
		{"ld f vx", 0xFC29, "LD", "Fx29"},
		{"ld b vx", 0xFB33, "LD", "Fx33"},
		{"store block", 0xFD55, "LD", "Fx55"},
		{"load block", 0xFC65, "LD", "Fx65"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := Decode(tt.word)
			assert.True(t, ok)
			assert.Equal(t, tt.mnemonic, op.Name)
			assert.Equal(t, tt.pattern, op.Form.Pattern)
			assert.Equal(t, tt.word&op.Mask, op.Value)
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	for _, word := range []uint16{
		0x5001, 0x5FFF, 0x8008, 0x800F, 0x9003,
		0xE000, 0xE0FF, 0xF000, 0xF0FB, 0xF066,
	} {
		_, ok := Decode(word)
		assert.False(t, ok, "expected no instruction for %04X", word)
	}
}

func TestForms(t *testing.T) {
	assert.Len(t, Forms("LD"), 11)
	assert.Len(t, Forms("JP"), 2)
	assert.Len(t, Forms("CLS"), 1)
	assert.Nil(t, Forms("MOV"))
	assert.Nil(t, Forms("ld"))
}

func TestPatternMask(t *testing.T) {
	tests := []struct {
		pattern string
		mask    uint16
		value   uint16
	}{
		{"00E0", 0xFFFF, 0x00E0},
		{"0nnn", 0xF000, 0x0000},
		{"3xkk", 0xF000, 0x3000},
		{"8xy4", 0xF00F, 0x8004},
		{"8x06", 0xF0FF, 0x8006},
		{"Dxyn", 0xF000, 0xD000},
		{"Fx65", 0xF0FF, 0xF065},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			mask, value := patternMask(tt.pattern)
			assert.Equal(t, tt.mask, mask)
			assert.Equal(t, tt.value, value)
		})
	}
}
