package dspfilter

import "math"

// Preemphasis is a first-order leaky differentiator, one instance
// shared by both channels with independent state, grounded on
// original_source/PreemphasisFilter.{h,cpp}.
type Preemphasis struct {
	alpha, gain  float64
	prevL, prevR float32
}

// NewPreemphasis builds a filter for time constant tau (seconds) at sample
// rate fs, with output gain applied after differentiation to reserve
// headroom. Typical tau is 50e-6 or 75e-6; alpha is derived as
// exp(-1/(tau*fs)), matching the source's comment on the relationship.
func NewPreemphasis(tau, fs, gain float64) *Preemphasis {
	return &Preemphasis{alpha: alphaFromTau(tau, fs), gain: gain}
}

func alphaFromTau(tau, fs float64) float64 {
	if tau <= 0 {
		return 0
	}
	return math.Exp(-1 / (tau * fs))
}

func (p *Preemphasis) Reset() {
	p.prevL = 0
	p.prevR = 0
}

// SetTau reconfigures the time constant tauUs (microseconds) at sample
// rate fs. tauUs <= 0 disables pre-emphasis (alpha = 0, straight
// pass-through at the configured gain).
func (p *Preemphasis) SetTau(tauUs, fs float64) {
	if tauUs <= 0 {
		p.alpha = 0
		return
	}
	p.alpha = alphaFromTau(tauUs*1e-6, fs)
}

// Process applies y[n] = gain*(x[n] - alpha*x[n-1]) independently per
// channel, in place, on interleaved [L,R,L,R,...] frames.
func (p *Preemphasis) Process(frames []float32) {
	n := len(frames) / 2
	for i := 0; i < n; i++ {
		l := frames[2*i]
		r := frames[2*i+1]
		frames[2*i] = float32(p.gain * float64(l-p.alpha32()*p.prevL))
		frames[2*i+1] = float32(p.gain * float64(r-p.alpha32()*p.prevR))
		p.prevL = l
		p.prevR = r
	}
}

func (p *Preemphasis) alpha32() float32 { return float32(p.alpha) }
