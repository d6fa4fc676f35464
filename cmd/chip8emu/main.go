// Package main implements the CHIP-8 emulator binary. It loads a ROM image
// or assembles a source file and runs it, either in a window or headless
// for a fixed number of cycles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/chip8emu/internal/assembler"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/frontend"
	"github.com/retroenv/chip8emu/internal/options"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, err := cli.ParseEmulatorFlags(os.Args)
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(opts.Quiet)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
	printBanner(opts.Quiet)

	if err := run(app.Context(), logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func printBanner(quiet bool) {
	if quiet {
		return
	}
	fmt.Println("[-----------------------------------]")
	fmt.Println("[ chip8emu - CHIP-8 virtual machine  ]")
	fmt.Printf("[-----------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func run(ctx context.Context, logger *log.Logger, opts options.Emulator) error {
	program, err := loadProgram(logger, opts.Input)
	if err != nil {
		return err
	}

	interp := chip8.New(logger)
	if err := interp.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	logger.Info("Program loaded",
		log.String("file", opts.Input),
		log.Int("bytes", len(program)))

	if opts.Cycles > 0 {
		return runHeadless(ctx, logger, interp, opts.Cycles)
	}
	return runWindow(ctx, logger, interp, opts)
}

// loadProgram reads the input file, assembling it first if it is assembly
// source rather than a raw ROM image.
func loadProgram(logger *log.Logger, name string) ([]byte, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening file '%s': %w", name, err)
	}
	defer func() {
		_ = file.Close()
	}()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".asm", ".s", ".s8":
		program, err := assembler.New(logger).Assemble(file)
		if err != nil {
			return nil, fmt.Errorf("assembling '%s': %w", name, err)
		}
		return program, nil

	default:
		program, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading file '%s': %w", name, err)
		}
		return program, nil
	}
}

func runWindow(ctx context.Context, logger *log.Logger, interp *chip8.Interpreter,
	opts options.Emulator) error {

	window := frontend.NewWindow(ctx, logger, interp, opts.Scale,
		"chip8emu - "+filepath.Base(opts.Input))

	beeper, err := frontend.NewBeeper()
	if err != nil {
		logger.Warn("Audio unavailable", log.Err(err))
	} else {
		window.SetBeeper(beeper)
		defer func() {
			_ = beeper.Close()
		}()
	}

	return window.Run()
}

// runHeadless runs without a window, keeping the documented 8 cycles per
// timer tick relationship. A key wait cannot resolve without input, so it
// ends the run.
func runHeadless(ctx context.Context, logger *log.Logger,
	interp *chip8.Interpreter, cycles int) error {

	for i := 0; i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := interp.Step(); err != nil {
			return err
		}
		if interp.Waiting() {
			logger.Info("Halted waiting for a key press")
			break
		}
		if (i+1)%chip8.CyclesPerFrame == 0 {
			interp.TickTimers()
		}
	}

	state := interp.State()
	logger.Info("Headless run finished",
		log.Hex("pc", state.PC),
		log.Hex("i", state.I))
	return nil
}
