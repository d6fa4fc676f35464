package chip8

// Operand classifies one operand position of an instruction form.
// RegX, RegY, Byte, Nibble and Addr name the opcode field the operand is
// encoded into; the remaining kinds are pseudo registers that select a form
// but contribute no bits of their own.
type Operand int

const (
	RegX   Operand = iota // Vx, encoded in the x nibble
	RegY                  // Vy, encoded in the y nibble
	Byte                  // kk immediate
	Nibble                // n immediate
	Addr                  // nnn address or label reference
	Reg0                  // the literal register V0 (JP V0, addr)
	AddrI                 // I or [I]
	DelayTimer            // DT
	SoundTimer            // ST
	Key                   // K
	Font                  // F
	BCD                   // B
)

// Form is one encoding of a mnemonic, selected by operand shape.
//
// The pattern is four hex digits. The letters x, y, k and n mark operand
// fields (two k digits form the kk byte, three n digits the nnn address, a
// single n the low nibble); every other digit is a literal nibble. The
// assembler substitutes operand digits into the pattern, the interpreter
// derives its match mask and value from the literal digits. Both sides
// consult this table, there is no second encoding of the instruction set.
type Form struct {
	Pattern  string
	Operands []Operand
}

// Opcode is a decodable instruction form with its derived match mask.
// A 16-bit word w encodes this form if w&Mask == Value.
type Opcode struct {
	Name  string
	Form  Form
	Mask  uint16
	Value uint16
}

// instructionSet maps each mnemonic to its encoding forms. Forms of a
// mnemonic are tried in order during encoding, so more specific operand
// shapes come first.
var instructionSet = map[string][]Form{
	"CLS":  {{Pattern: "00E0"}},
	"RET":  {{Pattern: "00EE"}},
	"SYS":  {{Pattern: "0nnn", Operands: []Operand{Addr}}},
	"JP": {
		{Pattern: "Bnnn", Operands: []Operand{Reg0, Addr}},
		{Pattern: "1nnn", Operands: []Operand{Addr}},
	},
	"CALL": {{Pattern: "2nnn", Operands: []Operand{Addr}}},
	"SE": {
		{Pattern: "5xy0", Operands: []Operand{RegX, RegY}},
		{Pattern: "3xkk", Operands: []Operand{RegX, Byte}},
	},
	"SNE": {
		{Pattern: "9xy0", Operands: []Operand{RegX, RegY}},
		{Pattern: "4xkk", Operands: []Operand{RegX, Byte}},
	},
	"LD": {
		{Pattern: "8xy0", Operands: []Operand{RegX, RegY}},
		{Pattern: "6xkk", Operands: []Operand{RegX, Byte}},
		{Pattern: "Fx07", Operands: []Operand{RegX, DelayTimer}},
		{Pattern: "Fx0A", Operands: []Operand{RegX, Key}},
		{Pattern: "Fx65", Operands: []Operand{RegX, AddrI}},
		{Pattern: "Fx15", Operands: []Operand{DelayTimer, RegX}},
		{Pattern: "Fx18", Operands: []Operand{SoundTimer, RegX}},
		{Pattern: "Fx29", Operands: []Operand{Font, RegX}},
		{Pattern: "Fx33", Operands: []Operand{BCD, RegX}},
		{Pattern: "Fx55", Operands: []Operand{AddrI, RegX}},
		{Pattern: "Annn", Operands: []Operand{AddrI, Addr}},
	},
	"ADD": {
		{Pattern: "8xy4", Operands: []Operand{RegX, RegY}},
		{Pattern: "7xkk", Operands: []Operand{RegX, Byte}},
		{Pattern: "Fx1E", Operands: []Operand{AddrI, RegX}},
	},
	"OR":   {{Pattern: "8xy1", Operands: []Operand{RegX, RegY}}},
	"AND":  {{Pattern: "8xy2", Operands: []Operand{RegX, RegY}}},
	"XOR":  {{Pattern: "8xy3", Operands: []Operand{RegX, RegY}}},
	"SUB":  {{Pattern: "8xy5", Operands: []Operand{RegX, RegY}}},
	"SUBN": {{Pattern: "8xy7", Operands: []Operand{RegX, RegY}}},
	"SHR": {
		{Pattern: "8xy6", Operands: []Operand{RegX, RegY}},
		{Pattern: "8x06", Operands: []Operand{RegX}},
	},
	"SHL": {
		{Pattern: "8xyE", Operands: []Operand{RegX, RegY}},
		{Pattern: "8x0E", Operands: []Operand{RegX}},
	},
	"RND": {{Pattern: "Cxkk", Operands: []Operand{RegX, Byte}}},
	"DRW": {{Pattern: "Dxyn", Operands: []Operand{RegX, RegY, Nibble}}},
	"SKP": {{Pattern: "Ex9E", Operands: []Operand{RegX}}},
	"SKNP": {{Pattern: "ExA1", Operands: []Operand{RegX}}},
}

// Opcodes indexes all decodable instruction forms by their first nibble,
// most specific mask first. Built from instructionSet at init time.
var Opcodes [16][]Opcode

func init() {
	for name, forms := range instructionSet {
		for _, form := range forms {
			mask, value := patternMask(form.Pattern)
			nibble := value >> 12
			Opcodes[nibble] = append(Opcodes[nibble], Opcode{
				Name:  name,
				Form:  form,
				Mask:  mask,
				Value: value,
			})
		}
	}
	for nibble := range Opcodes {
		ops := Opcodes[nibble]
		// Wider masks first so SYS 0nnn does not shadow CLS/RET.
		for i := 1; i < len(ops); i++ {
			for j := i; j > 0 && ops[j].Mask > ops[j-1].Mask; j-- {
				ops[j], ops[j-1] = ops[j-1], ops[j]
			}
		}
	}
}

// patternMask derives the decode mask and value from an encoding pattern.
// Literal hex digits contribute their nibble to both; operand field digits
// leave their nibble open.
func patternMask(pattern string) (mask, value uint16) {
	for _, c := range []byte(pattern) {
		mask <<= 4
		value <<= 4
		switch {
		case c >= '0' && c <= '9':
			mask |= 0xF
			value |= uint16(c - '0')
		case c >= 'A' && c <= 'F':
			mask |= 0xF
			value |= uint16(c-'A') + 10
		}
	}
	return mask, value
}

// Forms returns the encoding forms of a mnemonic, or nil if unknown.
func Forms(mnemonic string) []Form {
	return instructionSet[mnemonic]
}

// Decode matches a 16-bit instruction word against the opcode table.
// The second return value is false for bit patterns that encode no
// documented instruction.
func Decode(w uint16) (Opcode, bool) {
	for _, op := range Opcodes[w>>12] {
		if w&op.Mask == op.Value {
			return op, true
		}
	}
	return Opcode{}, false
}
