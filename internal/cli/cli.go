// Package cli handles command line interface logic of the binaries.
package cli

import (
	"flag"
	"fmt"

	"github.com/retroenv/chip8emu/internal/options"
)

// UsageError represents an error that should show usage information.
type UsageError struct {
	binary string
	flags  *flag.FlagSet
	msg    string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage line and the flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: %s [options] <file>\n\n", e.binary)
	e.flags.PrintDefaults()
	fmt.Println()
}

// ParseEmulatorFlags parses the command line of the emulator binary.
// The input file is the last positional argument.
func ParseEmulatorFlags(args []string) (options.Emulator, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	var opts options.Emulator

	flags.IntVar(&opts.Cycles, "cycles", 0, "run headless for the given number of instruction cycles instead of opening a window")
	flags.IntVar(&opts.Scale, "scale", 12, "window scale factor of the 64x32 display")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging of every executed instruction")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	if err := parseInput(flags, args, &opts.Input); err != nil {
		return opts, err
	}
	if opts.Scale < 1 {
		return opts, fmt.Errorf("invalid scale factor %d", opts.Scale)
	}
	return opts, nil
}

// ParseAssembleFlags parses the command line of the assembler binary.
func ParseAssembleFlags(args []string) (options.Assemble, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	var opts options.Assemble

	flags.StringVar(&opts.Output, "o", "", "name of the output .ch8 image, derived from the input name if not given")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	return opts, parseInput(flags, args, &opts.Input)
}

// parseInput parses the flags and validates the single positional file
// argument.
func parseInput(flags *flag.FlagSet, args []string, input *string) error {
	if err := flags.Parse(args[1:]); err != nil {
		return &UsageError{binary: args[0], flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	if len(rest) != 1 {
		return &UsageError{
			binary: args[0],
			flags:  flags,
			msg:    "expected exactly one input file",
		}
	}
	*input = rest[0]
	return nil
}
