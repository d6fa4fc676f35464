package frontend

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 440
	beepAmplitude  = 0.25
)

// Beeper plays the single fixed tone of the CHIP-8 sound timer. The player
// streams continuously; SetPlaying only opens and closes the gate so that
// toggling is glitch free and never blocks the emulation thread.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	gate   atomic.Bool
}

// NewBeeper opens the audio device and starts the (gated) tone stream.
func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	b := &Beeper{ctx: ctx}
	b.player = ctx.NewPlayer(&squareWave{gate: &b.gate})
	b.player.Play()
	return b, nil
}

// SetPlaying opens or closes the tone gate.
func (b *Beeper) SetPlaying(on bool) {
	b.gate.Store(on)
}

// Close stops playback.
func (b *Beeper) Close() error {
	return b.player.Close()
}

// squareWave generates the beep tone while the gate is open and silence
// otherwise.
type squareWave struct {
	gate  *atomic.Bool
	phase int
}

func (s *squareWave) Read(p []byte) (int, error) {
	const period = beepSampleRate / beepFrequency

	samples := len(p) / 4
	for i := 0; i < samples; i++ {
		var v float32
		if s.gate.Load() {
			if s.phase < period/2 {
				v = beepAmplitude
			} else {
				v = -beepAmplitude
			}
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
		s.phase = (s.phase + 1) % period
	}
	return samples * 4, nil
}
