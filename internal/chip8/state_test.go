package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStateReset(t *testing.T) {
	var s State
	s.V[3] = 0xAB
	s.I = 0x123
	s.Display[7] = 1
	s.Keys[2] = true

	s.Reset()

	assert.Equal(t, uint16(ProgramStart), s.PC)
	assert.Equal(t, byte(0), s.V[3])
	assert.Equal(t, uint16(0), s.I)
	assert.Equal(t, byte(0), s.Display[7])
	assert.False(t, s.Keys[2])

	// Font glyphs for 0-F live in interpreter memory.
	assert.Equal(t, byte(0xF0), s.Memory[0])
	assert.Equal(t, byte(0x80), s.Memory[len(font)-1])
	for i := len(font); i < MemorySize; i++ {
		if s.Memory[i] != 0 {
			t.Fatalf("memory at %04X not cleared", i)
		}
	}
}

func TestFontTableSize(t *testing.T) {
	assert.Equal(t, 16*fontGlyphSize, len(font))
}
