// Package options contains the program options.
package options

// Emulator contains the options of the emulator binary.
type Emulator struct {
	Input string // ROM or assembly source file to run

	Cycles int // run headless for this many instruction cycles
	Scale  int // window scale factor of the 64x32 display

	Debug bool
	Quiet bool
}

// Assemble contains the options of the assembler binary.
type Assemble struct {
	Input  string // assembly source file
	Output string // output .ch8 image, derived from the input name if empty

	Debug bool
	Quiet bool
}
