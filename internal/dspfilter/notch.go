package dspfilter

import "math"

// biquadCoeffs is one biquad section's coefficients, normalized so a0=1
// (b0,b1,b2 are numerator, a1,a2 denominator).
type biquadCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState holds the two delay elements for one channel of one biquad
// section, run in transposed Direct Form II (two state words instead of
// Direct Form I's two input and two output history values).
type biquadState struct {
	w1, w2 float64
}

func (s *biquadState) reset() { *s = biquadState{} }

func (c biquadCoeffs) process(s *biquadState, x float64) float64 {
	y := c.b0*x + s.w1
	s.w1 = c.b1*x - c.a1*y + s.w2
	s.w2 = c.b2*x - c.a2*y
	return y
}

// Notch is the pilot-band notch: a second-order IIR notch with
// independent L/R state, grounded on original_source/NotchFilter19k.{h,cpp}.
// The ESP-IDF SIMD coefficient generator the source calls
// (dsps_biquad_gen_notch_f32) has no Go equivalent and no example repo
// provides one, so the coefficients are derived directly from the standard
// RBJ audio-EQ-cookbook notch formula, which computes the same transfer
// function the source's generator produces for a notch biquad.
type Notch struct {
	c          biquadCoeffs
	stateL     biquadState
	stateR     biquadState
}

// NewNotch builds a notch centered at f0 (Hz) at sample rate fs. radius
// maps to Q as Q = 1/(2*(1-radius)), matching the source's configure();
// radius outside (0,1) falls back to Q=25 (the source's observed default).
func NewNotch(fs, f0, radius float64) *Notch {
	q := 25.0
	if radius > 0 && radius < 1 {
		q = 1 / (2 * (1 - radius))
	}
	return &Notch{c: designNotchBiquad(fs, f0, q)}
}

func designNotchBiquad(fs, f0, q float64) biquadCoeffs {
	w0 := 2 * math.Pi * f0 / fs
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := 1.0
	b1 := -2 * cosW0
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return biquadCoeffs{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

func (n *Notch) Reset() {
	n.stateL.reset()
	n.stateR.reset()
}

// Process applies the notch independently per channel, in place, on
// interleaved [L,R,L,R,...] frames.
func (n *Notch) Process(frames []float32) {
	count := len(frames) / 2
	for i := 0; i < count; i++ {
		frames[2*i] = float32(n.c.process(&n.stateL, float64(frames[2*i])))
		frames[2*i+1] = float32(n.c.process(&n.stateR, float64(frames[2*i+1])))
	}
}
