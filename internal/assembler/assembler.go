// Package assembler translates CHIP-8 assembly source into the flat
// big-endian opcode image the interpreter executes. It assembles in two
// passes so that forward references to labels defined later in the source
// resolve correctly.
package assembler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// line is the record of one source line that occupies a program slot.
// Lines that could not be parsed in the first pass keep resolved false and
// are retried at their originally assigned position in the second pass.
type line struct {
	text     string
	num      int
	pos      uint16
	opcode   uint16
	resolved bool
}

// Assembler assembles CHIP-8 source text. Its label table and line records
// are scratch state of a single Assemble call.
type Assembler struct {
	logger *log.Logger
	labels map[string]uint16
}

// New returns an assembler.
func New(logger *log.Logger) *Assembler {
	return &Assembler{
		logger: logger,
	}
}

// Assemble reads assembly source, one instruction, label definition or
// comment per line, and produces the big-endian opcode sequence in source
// order, ready to be loaded at the program start address.
func (a *Assembler) Assemble(r io.Reader) ([]byte, error) {
	a.labels = map[string]uint16{}

	lines, err := a.firstPass(r)
	if err != nil {
		return nil, err
	}
	return a.secondPass(lines)
}

// firstPass scans every source line in order, assigning each instruction
// line a fixed memory position from the program start address, 2 bytes per
// line. Label definitions record the current position and occupy no slot.
// Lines that fail to parse are retained unresolved; only a malformed digit
// composition aborts here since retrying it can never succeed.
func (a *Assembler) firstPass(r io.Reader) ([]line, error) {
	var lines []line
	pos := uint16(chip8.ProgramStart)
	num := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		num++
		text := scanner.Text()

		opcode, err := a.parseLine(text, pos)
		var encErr *EncodeError
		switch {
		case errors.Is(err, errNoOpcode):
			continue

		case errors.As(err, &encErr):
			return nil, err

		case err != nil:
			lines = append(lines, line{text: text, num: num, pos: pos})
			pos += 2

		default:
			lines = append(lines, line{
				text:     text,
				num:      num,
				pos:      pos,
				opcode:   opcode,
				resolved: true,
			})
			pos += 2
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return lines, nil
}

// secondPass re-parses every unresolved line with the now complete label
// table and emits the final byte sequence. A line that still fails is a
// fatal assembly error reported with the literal source line.
func (a *Assembler) secondPass(lines []line) ([]byte, error) {
	out := make([]byte, 0, len(lines)*2)

	for i := range lines {
		ln := &lines[i]
		if !ln.resolved {
			opcode, err := a.parseLine(ln.text, ln.pos)
			if err != nil {
				var encErr *EncodeError
				if errors.As(err, &encErr) {
					return nil, err
				}
				if errors.Is(err, errIncomplete) {
					err = errors.New("undefined label")
				}
				return nil, &LineError{Num: ln.num, Text: ln.text, Err: err}
			}
			ln.opcode = opcode
			ln.resolved = true
		}
		out = append(out, byte(ln.opcode>>8), byte(ln.opcode))
	}

	return out, nil
}

// parseLine parses one source line into its opcode at the given memory
// position. It returns errNoOpcode for lines that occupy no program slot
// and errIncomplete for operands referencing a label not in the table yet.
func (a *Assembler) parseLine(text string, pos uint16) (uint16, error) {
	tokens := splitLine(text)
	if len(tokens) == 0 {
		return 0, errNoOpcode
	}

	if name, ok := strings.CutSuffix(tokens[0], ":"); ok && len(tokens) == 1 {
		// A label shares the position of the following instruction.
		// Redefining a label silently overwrites the earlier address.
		a.labels[name] = pos
		a.logger.Debug("label defined",
			log.String("name", name), log.Hex("address", pos))
		return 0, errNoOpcode
	}

	forms := chip8.Forms(tokens[0])
	if forms == nil {
		return 0, fmt.Errorf("unknown mnemonic %q", tokens[0])
	}

	operands := make([]operand, 0, len(tokens)-1)
	for _, token := range tokens[1:] {
		op, err := a.parseOperand(token)
		if err != nil {
			return 0, err
		}
		operands = append(operands, op)
	}

	for _, form := range forms {
		if !shapeMatches(form, operands) {
			continue
		}

		var f fields
		for i, want := range form.Operands {
			if want == chip8.Addr && !operands[i].resolved {
				return 0, errIncomplete
			}
			f.assign(want, operands[i])
		}
		return encodeForm(text, form, f)
	}

	return 0, fmt.Errorf("no encoding of %q matches its operands", tokens[0])
}

// shapeMatches reports whether the parsed operands select the given form.
func shapeMatches(form chip8.Form, operands []operand) bool {
	if len(form.Operands) != len(operands) {
		return false
	}
	for i, want := range form.Operands {
		if !operands[i].matches(want) {
			return false
		}
	}
	return true
}
