package chip8

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the total addressable memory of the machine.
	MemorySize = 4096

	// ProgramStart is the memory address where CHIP-8 programs begin execution.
	ProgramStart = 0x200

	// DisplayWidth and DisplayHeight are the dimensions of the monochrome
	// display in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	// StackDepth is the size of the call stack. The stack pointer
	// pre-increments on CALL, so at most StackDepth-1 calls can nest.
	StackDepth = 16

	// fontGlyphSize is the height in bytes of one built-in hex digit sprite.
	fontGlyphSize = 5
)

// font is the built-in sprite table for the hex digits 0-F, 5 bytes per
// glyph, loaded at address 0x000 on reset.
var font = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// State holds the complete machine state: pure data, owned and mutated by
// the interpreter for the life of a program run.
type State struct {
	Memory [MemorySize]byte

	// V0-VF general purpose registers. VF doubles as the carry, borrow,
	// shift-out and sprite collision flag.
	V [16]byte

	// I is the address register. Only the low 12 bits address memory, but
	// ADD I, Vx is allowed to grow it past that; accesses through an
	// oversized I fail the bounds check instead of wrapping.
	I uint16

	// DelayTimer and SoundTimer count down at the 60Hz frame tick,
	// independent of the instruction cycle.
	DelayTimer byte
	SoundTimer byte

	PC    uint16
	SP    byte
	Stack [StackDepth]uint16

	// Display holds one byte per pixel, value 0 or 1, row major.
	Display [DisplayWidth * DisplayHeight]byte

	// Keys holds the down state of the 16 hex keys, written by the input
	// collaborator and read by SKP/SKNP.
	Keys [16]bool
}

// Reset clears the state, loads the font into interpreter memory and points
// the program counter at the program start address.
func (s *State) Reset() {
	*s = State{}
	copy(s.Memory[:], font[:])
	s.PC = ProgramStart
}
