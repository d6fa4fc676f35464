package assembler

import (
	"errors"
	"fmt"
)

// errNoOpcode signals a line that produces no code: blank, comment only or
// a label definition.
var errNoOpcode = errors.New("line produces no opcode")

// errIncomplete signals an operand referencing a label that is not in the
// label table yet. Such lines are retried in the second pass; every other
// failure is final.
var errIncomplete = errors.New("label not yet resolved")

// LineError reports a source line that could not be assembled, echoing the
// literal line for diagnosis.
type LineError struct {
	Num  int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Num, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// EncodeError reports a malformed opcode digit composition. It indicates a
// mnemonic/operand mismatch inside the assembler rather than a user error
// and carries every computed operand field for diagnosis.
type EncodeError struct {
	Text     string
	Composed string
	X        string
	Y        string
	N        string
	KK       string
	NNN      string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf(
		"malformed opcode composition %q for line %q (x=%q y=%q n=%q kk=%q nnn=%q)",
		e.Composed, e.Text, e.X, e.Y, e.N, e.KK, e.NNN)
}
