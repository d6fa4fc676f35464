// Package chip8 implements the CHIP-8 virtual machine: the 16-bit opcode
// table shared between assembler and interpreter, the machine state and the
// fetch-decode-execute engine.
package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"
)

// CyclesPerFrame is the documented instruction budget per 60Hz frame tick,
// roughly a 480Hz effective instruction rate.
const CyclesPerFrame = 8

// maxProgramSize is the number of memory cells available to program code
// and data.
const maxProgramSize = MemorySize - ProgramStart

var (
	// ErrStackOverflow reports a CALL past the maximum nesting depth.
	ErrStackOverflow = errors.New("call stack overflow")
	// ErrStackUnderflow reports a RET with no return address on the stack.
	ErrStackUnderflow = errors.New("call stack underflow")
)

// MemoryError reports a memory access outside the 4096 cell address space.
// It is fatal: clamping or wrapping would silently corrupt emulation.
type MemoryError struct {
	Addr int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory access out of range: 0x%04X", e.Addr)
}

// Interpreter executes one instruction per Step call against its owned
// machine state. It is not safe for concurrent use; the driving collaborator
// owns the cycle and timer cadence.
type Interpreter struct {
	state  State
	logger *log.Logger

	// randByte is the RND entropy source, replaceable in tests.
	randByte func() byte

	// waitReg is the register index an Fx0A is waiting to fill, or -1
	// while running. While waiting, Step does not advance the machine.
	waitReg int

	drawFlag bool
	sound    chan<- bool
}

// New returns an interpreter with a reset machine state.
func New(logger *log.Logger) *Interpreter {
	in := &Interpreter{
		logger:   logger,
		randByte: func() byte { return byte(rand.UintN(256)) },
		waitReg:  -1,
	}
	in.state.Reset()
	return in
}

// Reset restores the power-on state, keeping the configured sound channel.
func (in *Interpreter) Reset() {
	in.state.Reset()
	in.waitReg = -1
	in.drawFlag = false
}

// Load copies a program image into memory at the program start address.
func (in *Interpreter) Load(program []byte) error {
	if len(program) > maxProgramSize {
		return fmt.Errorf("program size %d exceeds the %d byte program space",
			len(program), maxProgramSize)
	}
	copy(in.state.Memory[ProgramStart:], program)
	return nil
}

// State exposes the machine state for inspection.
func (in *Interpreter) State() *State {
	return &in.state
}

// Display returns the display buffer, one byte per pixel, row major.
// Callers must treat it as read-only; only DRW and CLS mutate it.
func (in *Interpreter) Display() []byte {
	return in.state.Display[:]
}

// DisplayUpdated reports whether the display changed since the last call
// and clears the flag.
func (in *Interpreter) DisplayUpdated() bool {
	updated := in.drawFlag
	in.drawFlag = false
	return updated
}

// SoundActive reports whether the sound tone should currently be playing.
func (in *Interpreter) SoundActive() bool {
	return in.state.SoundTimer > 0
}

// Waiting reports whether the machine is suspended in an Fx0A key wait.
func (in *Interpreter) Waiting() bool {
	return in.waitReg >= 0
}

// NotifySound registers a channel that receives sound on/off transitions.
// Sends are best effort and never block; the SoundActive predicate remains
// the authoritative signal.
func (in *Interpreter) NotifySound(ch chan<- bool) {
	in.sound = ch
}

// SetKey records a key state change from the input collaborator. A key press
// while the machine waits in Fx0A stores the key index in the waiting
// register and resumes execution.
func (in *Interpreter) SetKey(key byte, pressed bool) {
	key &= 0x0F
	in.state.Keys[key] = pressed
	if pressed && in.waitReg >= 0 {
		in.state.V[in.waitReg] = key
		in.waitReg = -1
	}
}

// TickTimers decrements both timers by one, stopping at zero. It is driven
// once per 60Hz frame by the collaborator, independent of the instruction
// cycle budget.
func (in *Interpreter) TickTimers() {
	if in.state.DelayTimer > 0 {
		in.state.DelayTimer--
	}
	if in.state.SoundTimer > 0 {
		in.state.SoundTimer--
		if in.state.SoundTimer == 0 {
			in.notifySound(false)
		}
	}
}

// Step runs one fetch-decode-execute cycle. While a key wait is active it
// returns immediately without advancing the machine. Unknown bit patterns
// are no-ops; stack and memory faults are fatal.
func (in *Interpreter) Step() error {
	if in.waitReg >= 0 {
		return nil
	}

	pc := int(in.state.PC)
	if pc+1 >= MemorySize {
		return &MemoryError{Addr: pc + 1}
	}
	w := uint16(in.state.Memory[pc])<<8 | uint16(in.state.Memory[pc+1])

	// Advance before dispatch so control transfer opcodes can assign the
	// program counter without being clobbered afterwards.
	in.state.PC += 2

	op, ok := Decode(w)
	if !ok {
		in.logger.Debug("unknown opcode ignored",
			log.Hex("opcode", w), log.Hex("pc", uint16(pc)))
		return nil
	}

	nnn := w & 0x0FFF
	n := byte(w & 0x000F)
	x := byte(w>>8) & 0x0F
	y := byte(w>>4) & 0x0F
	kk := byte(w)

	s := &in.state

	switch op.Value {
	case 0x00E0: // CLS
		s.Display = [DisplayWidth * DisplayHeight]byte{}
		in.drawFlag = true

	case 0x00EE: // RET
		if s.SP == 0 {
			return ErrStackUnderflow
		}
		s.PC = s.Stack[s.SP]
		s.SP--

	case 0x0000: // SYS, ignored by modern interpreters

	case 0x1000: // JP addr
		s.PC = nnn

	case 0x2000: // CALL addr
		if s.SP >= StackDepth-1 {
			return ErrStackOverflow
		}
		s.SP++
		s.Stack[s.SP] = s.PC
		s.PC = nnn

	case 0x3000: // SE Vx, byte
		if s.V[x] == kk {
			s.PC += 2
		}

	case 0x4000: // SNE Vx, byte
		if s.V[x] != kk {
			s.PC += 2
		}

	case 0x5000: // SE Vx, Vy
		if s.V[x] == s.V[y] {
			s.PC += 2
		}

	case 0x6000: // LD Vx, byte
		s.V[x] = kk

	case 0x7000: // ADD Vx, byte, no carry flag
		s.V[x] = byte(uint16(s.V[x]) + uint16(kk))

	case 0x8000: // LD Vx, Vy
		s.V[x] = s.V[y]

	case 0x8001: // OR Vx, Vy
		s.V[x] |= s.V[y]

	case 0x8002: // AND Vx, Vy
		s.V[x] &= s.V[y]

	case 0x8003: // XOR Vx, Vy
		s.V[x] ^= s.V[y]

	case 0x8004: // ADD Vx, Vy, VF = carry
		sum := uint16(s.V[x]) + uint16(s.V[y])
		s.V[x] = byte(sum)
		if sum > 0xFF {
			s.V[0xF] = 1
		} else {
			s.V[0xF] = 0
		}

	case 0x8005: // SUB Vx, Vy, VF = not borrow, saturating
		if s.V[x] > s.V[y] {
			s.V[0xF] = 1
			s.V[x] -= s.V[y]
		} else {
			s.V[0xF] = 0
			s.V[x] = 0
		}

	case 0x8006: // SHR Vx, VF = bit shifted out
		s.V[0xF] = s.V[x] & 0x01
		s.V[x] /= 2

	case 0x8007: // SUBN Vx, Vy, VF = not borrow, saturating
		if s.V[y] > s.V[x] {
			s.V[0xF] = 1
			s.V[x] = s.V[y] - s.V[x]
		} else {
			s.V[0xF] = 0
			s.V[x] = 0
		}

	case 0x800E: // SHL Vx, VF = bit shifted out
		s.V[0xF] = s.V[x] >> 7
		s.V[x] *= 2

	case 0x9000: // SNE Vx, Vy
		if s.V[x] != s.V[y] {
			s.PC += 2
		}

	case 0xA000: // LD I, addr
		s.I = nnn

	case 0xB000: // JP V0, addr
		s.PC = nnn + uint16(s.V[0])

	case 0xC000: // RND Vx, byte
		s.V[x] = in.randByte() & kk

	case 0xD000: // DRW Vx, Vy, n
		return in.draw(x, y, n)

	case 0xE09E: // SKP Vx
		if s.Keys[s.V[x]&0x0F] {
			s.PC += 2
		}

	case 0xE0A1: // SKNP Vx
		if !s.Keys[s.V[x]&0x0F] {
			s.PC += 2
		}

	case 0xF007: // LD Vx, DT
		s.V[x] = s.DelayTimer

	case 0xF00A: // LD Vx, K, suspend until a key press
		in.waitReg = int(x)

	case 0xF015: // LD DT, Vx
		s.DelayTimer = s.V[x]

	case 0xF018: // LD ST, Vx
		wasActive := s.SoundTimer > 0
		s.SoundTimer = s.V[x]
		if !wasActive && s.SoundTimer > 0 {
			in.notifySound(true)
		}

	case 0xF01E: // ADD I, Vx, I is deliberately not masked to 12 bits
		s.I += uint16(s.V[x])

	case 0xF029: // LD F, Vx, point I at the hex digit sprite
		s.I = uint16(s.V[x]&0x0F) * fontGlyphSize

	case 0xF033: // LD B, Vx, BCD digits at I, I+1, I+2
		if int(s.I)+2 >= MemorySize {
			return &MemoryError{Addr: int(s.I) + 2}
		}
		s.Memory[s.I] = s.V[x] / 100
		s.Memory[s.I+1] = (s.V[x] % 100) / 10
		s.Memory[s.I+2] = s.V[x] % 10

	case 0xF055: // LD [I], Vx, store V0..Vx inclusive, I unchanged
		if int(s.I)+int(x) >= MemorySize {
			return &MemoryError{Addr: int(s.I) + int(x)}
		}
		for i := byte(0); i <= x; i++ {
			s.Memory[s.I+uint16(i)] = s.V[i]
		}

	case 0xF065: // LD Vx, [I], read V0..Vx inclusive, I unchanged
		if int(s.I)+int(x) >= MemorySize {
			return &MemoryError{Addr: int(s.I) + int(x)}
		}
		for i := byte(0); i <= x; i++ {
			s.V[i] = s.Memory[s.I+uint16(i)]
		}
	}

	return nil
}

// draw XORs an n row sprite read from memory at I onto the display at
// (Vx, Vy), wrapping on both axes and setting VF on any 1 to 0 transition.
func (in *Interpreter) draw(x, y, n byte) error {
	s := &in.state
	s.V[0xF] = 0

	for row := 0; row < int(n); row++ {
		addr := int(s.I) + row
		if addr >= MemorySize {
			return &MemoryError{Addr: addr}
		}
		sprite := s.Memory[addr]
		py := (int(s.V[y]) + row) % DisplayHeight

		for col := 0; col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			px := (int(s.V[x]) + col) % DisplayWidth
			idx := py*DisplayWidth + px
			if s.Display[idx] == 1 {
				s.V[0xF] = 1
			}
			s.Display[idx] ^= 1
		}
	}

	in.drawFlag = true
	return nil
}

// notifySound sends a sound transition without ever blocking emulation.
// A full or abandoned channel drops the notification.
func (in *Interpreter) notifySound(on bool) {
	if in.sound == nil {
		return
	}
	defer func() {
		_ = recover() // listener may have closed the channel
	}()
	select {
	case in.sound <- on:
	default:
	}
}
