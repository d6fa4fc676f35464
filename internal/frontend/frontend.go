// Package frontend hosts the I/O collaborators around the interpreter: an
// ebiten window that renders the display and feeds the hex keypad, and an
// oto driven beeper for the sound timer. All emulation state stays inside
// the interpreter; this package only drives its cycle and timer cadence.
package frontend

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// keypad maps the host keyboard onto the CHIP-8 hex keypad using the
// conventional layout:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var keypad = map[ebiten.Key]byte{
	ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// Window drives the interpreter at the frame cadence: ebiten calls Update
// at 60Hz, each update runs the per frame instruction budget and one timer
// tick.
type Window struct {
	ctx    context.Context
	logger *log.Logger
	interp *chip8.Interpreter
	beeper *Beeper

	sound chan bool
	frame []byte // RGBA buffer of the 64x32 display
}

// NewWindow creates the emulator window for the given interpreter.
func NewWindow(ctx context.Context, logger *log.Logger, interp *chip8.Interpreter,
	scale int, title string) *Window {

	w := &Window{
		ctx:    ctx,
		logger: logger,
		interp: interp,
		sound:  make(chan bool, 4),
		frame:  make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}
	for i := range chip8.DisplayWidth * chip8.DisplayHeight {
		w.frame[i*4+3] = 0xFF
	}
	interp.NotifySound(w.sound)

	ebiten.SetWindowSize(chip8.DisplayWidth*scale, chip8.DisplayHeight*scale)
	ebiten.SetWindowTitle(title)
	return w
}

// SetBeeper attaches an audio beeper toggled by the sound timer.
func (w *Window) SetBeeper(beeper *Beeper) {
	w.beeper = beeper
}

// Run shows the window and blocks until it is closed or emulation faults.
func (w *Window) Run() error {
	return ebiten.RunGame(w)
}

// Update implements ebiten.Game. It is called once per 60Hz frame.
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}

	w.pollKeys()

	for i := 0; i < chip8.CyclesPerFrame; i++ {
		if err := w.interp.Step(); err != nil {
			return fmt.Errorf("emulation fault: %w", err)
		}
		if w.interp.Waiting() {
			// Fx0A ends the cycle budget of this frame.
			break
		}
	}
	w.interp.TickTimers()

	if w.beeper != nil {
		w.beeper.SetPlaying(w.interp.SoundActive())
	}
	w.drainSoundEvents()
	return nil
}

// Draw implements ebiten.Game, painting the monochrome display buffer.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.interp.DisplayUpdated() {
		for i, pixel := range w.interp.Display() {
			v := byte(0)
			if pixel != 0 {
				v = 0xFF
			}
			w.frame[i*4] = v
			w.frame[i*4+1] = v
			w.frame[i*4+2] = v
		}
	}
	screen.WritePixels(w.frame)
}

// Layout implements ebiten.Game; ebiten scales the native display
// resolution to the window size.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}

// pollKeys forwards host key transitions to the interpreter key state.
func (w *Window) pollKeys() {
	for hostKey, key := range keypad {
		if inpututil.IsKeyJustPressed(hostKey) {
			w.interp.SetKey(key, true)
		}
		if inpututil.IsKeyJustReleased(hostKey) {
			w.interp.SetKey(key, false)
		}
	}
}

// drainSoundEvents logs sound transitions reported by the interpreter.
func (w *Window) drainSoundEvents() {
	for {
		select {
		case on := <-w.sound:
			state := "off"
			if on {
				state = "on"
			}
			w.logger.Debug("sound", log.String("state", state))
		default:
			return
		}
	}
}
