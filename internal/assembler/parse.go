package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// operandKind classifies a parsed operand token before it is matched
// against the encoding forms of the opcode table.
type operandKind int

const (
	kindRegister operandKind = iota // Vx
	kindNumber                      // 0x hex or decimal immediate
	kindLabel                       // bare identifier, resolved via the label table
	kindAddrI                       // I or [I]
	kindDelayTimer                  // DT
	kindSoundTimer                  // ST
	kindKey                         // K
	kindFont                        // F
	kindBCD                         // B
)

// operand is one parsed operand: its kind and its hex digit string, unpadded.
// Unresolved label references keep empty digits until the second pass.
type operand struct {
	kind     operandKind
	digits   string
	resolved bool
}

// splitLine strips the comment, splits on whitespace and drops the trailing
// comma separator from each token.
func splitLine(text string) []string {
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	for i, field := range fields {
		fields[i] = strings.TrimSuffix(field, ",")
	}
	return fields
}

// parseOperand classifies a single operand token. Register indices are a
// single hex digit after V; decimal immediates are converted to hex; any
// token that is neither a register, pseudo register nor numeral is a label
// reference.
func (a *Assembler) parseOperand(token string) (operand, error) {
	switch token {
	case "I", "[I]":
		return operand{kind: kindAddrI}, nil
	case "DT":
		return operand{kind: kindDelayTimer}, nil
	case "ST":
		return operand{kind: kindSoundTimer}, nil
	case "K":
		return operand{kind: kindKey}, nil
	case "F":
		return operand{kind: kindFont}, nil
	case "B":
		return operand{kind: kindBCD}, nil
	}

	if rest, ok := strings.CutPrefix(token, "V"); ok {
		if len(rest) != 1 || !isHexDigit(rest[0]) {
			return operand{}, fmt.Errorf("invalid register %q", token)
		}
		return operand{kind: kindRegister, digits: rest, resolved: true}, nil
	}

	if digits, ok := strings.CutPrefix(token, "0x"); ok {
		if digits == "" {
			return operand{}, fmt.Errorf("invalid hex literal %q", token)
		}
		for i := 0; i < len(digits); i++ {
			if !isHexDigit(digits[i]) {
				return operand{}, fmt.Errorf("invalid hex literal %q", token)
			}
		}
		return operand{kind: kindNumber, digits: digits, resolved: true}, nil
	}

	if v, err := strconv.ParseUint(token, 10, 16); err == nil {
		return operand{
			kind:     kindNumber,
			digits:   strconv.FormatUint(v, 16),
			resolved: true,
		}, nil
	}

	op := operand{kind: kindLabel}
	if addr, ok := a.labels[token]; ok {
		op.digits = fmt.Sprintf("%03x", addr)
		op.resolved = true
	}
	return op, nil
}

// matches reports whether a parsed operand can fill the given form position.
func (op operand) matches(want chip8.Operand) bool {
	switch want {
	case chip8.RegX, chip8.RegY:
		return op.kind == kindRegister
	case chip8.Reg0:
		return op.kind == kindRegister && op.digits == "0"
	case chip8.Byte, chip8.Nibble:
		return op.kind == kindNumber
	case chip8.Addr:
		return op.kind == kindNumber || op.kind == kindLabel
	case chip8.AddrI:
		return op.kind == kindAddrI
	case chip8.DelayTimer:
		return op.kind == kindDelayTimer
	case chip8.SoundTimer:
		return op.kind == kindSoundTimer
	case chip8.Key:
		return op.kind == kindKey
	case chip8.Font:
		return op.kind == kindFont
	case chip8.BCD:
		return op.kind == kindBCD
	}
	return false
}

// fields holds the computed operand digit strings for one instruction,
// keyed by the opcode field they are substituted into.
type fields struct {
	x   string
	y   string
	n   string
	kk  string
	nnn string
}

// assign distributes matched operands onto their opcode fields.
func (f *fields) assign(want chip8.Operand, op operand) {
	switch want {
	case chip8.RegX:
		f.x = op.digits
	case chip8.RegY:
		f.y = op.digits
	case chip8.Byte:
		f.kk = pad(op.digits, 2)
	case chip8.Nibble:
		f.n = op.digits
	case chip8.Addr:
		f.nnn = pad(op.digits, 3)
	}
}

// encodeForm synthesizes the opcode for a matched form by substituting the
// operand digit strings into the form's pattern and parsing the result as a
// 16-bit hex value. A parse failure means the digit composition is malformed
// and aborts assembly with full context.
func encodeForm(text string, form chip8.Form, f fields) (uint16, error) {
	var b strings.Builder
	pattern := form.Pattern

	for i := 0; i < len(pattern); {
		switch pattern[i] {
		case 'x':
			b.WriteString(f.x)
			i++
		case 'y':
			b.WriteString(f.y)
			i++
		case 'k': // two k digits form the kk byte
			b.WriteString(f.kk)
			i += 2
		case 'n': // three n digits form the nnn address, one the low nibble
			if strings.HasPrefix(pattern[i:], "nnn") {
				b.WriteString(f.nnn)
				i += 3
			} else {
				b.WriteString(f.n)
				i++
			}
		default:
			b.WriteByte(pattern[i])
			i++
		}
	}

	composed := b.String()
	v, err := strconv.ParseUint(composed, 16, 16)
	if err != nil {
		return 0, &EncodeError{
			Text:     text,
			Composed: composed,
			X:        f.x,
			Y:        f.y,
			N:        f.n,
			KK:       f.kk,
			NNN:      f.nnn,
		}
	}
	return uint16(v), nil
}

// pad left pads a digit string with zeros up to the field width. Oversized
// values are kept as is so that the composition parse catches them.
func pad(digits string, width int) string {
	for len(digits) < width {
		digits = "0" + digits
	}
	return digits
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'F' || c >= 'a' && c <= 'f'
}
