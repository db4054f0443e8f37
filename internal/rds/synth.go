package rds

import (
	"math"

	"github.com/doismellburning/fmrdsd/internal/fabric"
)

const symbolRateHz = 1187.5

// biquadCoeffs/biquadState mirror dspfilter's internal shapes but are kept
// local to this package: the synthesizer's two cascaded LPF sections are
// a fixed 2.4kHz/Q=0.707 design only ever used here, not a general-purpose
// filter another package configures, so duplicating the tiny
// transposed-Direct-Form-II step avoids an import-cycle-prone dependency on dspfilter's unexported
// biquad type.
type biquadCoeffs struct{ b0, b1, b2, a1, a2 float64 }
type biquadState struct{ w1, w2 float64 }

func (c biquadCoeffs) process(s *biquadState, x float64) float64 {
	y := c.b0*x + s.w1
	s.w1 = c.b1*x - c.a1*y + s.w2
	s.w2 = c.b2*x - c.a2*y
	return y
}

func designLowpassBiquad(fs, fc, q float64) biquadCoeffs {
	w0 := 2 * math.Pi * fc / fs
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquadCoeffs{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// Synth is the RDS synthesizer: differential Manchester baseband
// generation, cascaded through two identical 2.4kHz biquad LPF sections,
// then modulated onto the 57kHz coherent carrier. Grounded on
// original_source/RDSSynth.{h,cpp}.
type Synth struct {
	bits *fabric.BitFIFO

	symPhase   float32
	halfToggle bool
	lastDiff   byte

	lpf      biquadCoeffs
	stateA   biquadState
	stateB   biquadState

	symInc float32
}

// NewSynth configures the synthesizer for output sample rate fs.
func NewSynth(bits *fabric.BitFIFO, fs float64) *Synth {
	return &Synth{
		bits:   bits,
		symInc: float32(symbolRateHz / fs),
		lpf:    designLowpassBiquad(fs, 2400, 0.707),
	}
}

func (s *Synth) Reset() {
	s.symPhase = 0
	s.halfToggle = false
	s.lastDiff = 0
	s.stateA = biquadState{}
	s.stateB = biquadState{}
}

// Process fills out[i] = bb[i] * carrier57[i] * amp for n samples, where
// bb is the band-limited Manchester baseband built from symbol phase
// advance, mid-symbol toggle, and differential encoding. When the bit
// FIFO is empty, the idle bit (logical 1) is used; this package, not the
// assembler, owns that policy.
func (s *Synth) Process(carrier57 []float32, amp float32, out []float32, n int) {
	for i := 0; i < n; i++ {
		s.symPhase += s.symInc
		if s.symPhase >= 0.5 {
			s.halfToggle = true
		}
		if s.symPhase >= 1.0 {
			s.symPhase -= 1.0
			s.halfToggle = false
			bit, ok := s.bits.Pop()
			if !ok {
				bit = 1
			}
			s.lastDiff ^= bit & 1
		}

		sign := float32(1)
		if s.lastDiff != 0 {
			sign = -1
		}
		toggleSign := float32(1)
		if s.halfToggle {
			toggleSign = -1
		}
		bb := sign * toggleSign

		bb64 := s.lpf.process(&s.stateA, float64(bb))
		bb64 = s.lpf.process(&s.stateB, bb64)

		out[i] = float32(bb64) * carrier57[i] * amp
	}
}
