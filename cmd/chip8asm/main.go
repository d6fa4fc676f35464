// Package main implements the CHIP-8 assembler binary. It translates an
// assembly source file into a flat .ch8 ROM image loadable at 0x200.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/chip8emu/internal/assembler"
	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/options"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, err := cli.ParseAssembleFlags(os.Args)
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

	if err := assembleFile(logger, opts); err != nil {
		logger.Fatal("Assembly failed", log.Err(err))
	}
}

func printBanner(quiet bool) {
	if quiet {
		return
	}
	fmt.Println("[--------------------------------]")
	fmt.Println("[ chip8asm - CHIP-8 assembler    ]")
	fmt.Printf("[--------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func assembleFile(logger *log.Logger, opts options.Assemble) error {
	file, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("opening file '%s': %w", opts.Input, err)
	}
	defer func() {
		_ = file.Close()
	}()

	program, err := assembler.New(logger).Assemble(file)
	if err != nil {
		return fmt.Errorf("assembling '%s': %w", opts.Input, err)
	}

	output := opts.Output
	if output == "" {
		ext := filepath.Ext(opts.Input)
		output = strings.TrimSuffix(opts.Input, ext) + ".ch8"
	}

	if err := os.WriteFile(output, program, 0o644); err != nil {
		return fmt.Errorf("writing output '%s': %w", output, err)
	}

	logger.Info("Assembled",
		log.String("output", output),
		log.Int("bytes", len(program)))
	return nil
}
