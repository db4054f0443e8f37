// Package dspfilter implements the stateful per-channel DSP stages that run
// at Fs_in and Fs_out: pre-emphasis, the pilot-band notch, and the
// polyphase FIR upsampler, plus the window/coefficient design helpers
// they're built from.
//
// The coefficient-design shape (window-then-sinc, normalized for unity DC
// gain) is grounded on src/dsp.go's window()/gen_lowpass().
package dspfilter

import "math"

// WindowKind selects the FIR design window, the same family src/dsp.go's
// window() dispatches on.
type WindowKind int

const (
	WindowHamming WindowKind = iota
	WindowBlackman
	WindowKaiser
)

// Window fills w with a length-n window of the given kind. For
// WindowKaiser, beta controls stopband/transition trade-off (higher beta,
// more stopband attenuation, wider transition); it's ignored for the other
// kinds.
func Window(kind WindowKind, n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	switch kind {
	case WindowHamming:
		for i := range w {
			w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		}
	case WindowBlackman:
		for i := range w {
			x := 2 * math.Pi * float64(i) / float64(n-1)
			w[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
		}
	case WindowKaiser:
		denom := besselI0(beta)
		for i := range w {
			a := float64(i) - float64(n-1)/2
			ratio := 2 * a / float64(n-1)
			w[i] = besselI0(beta*math.Sqrt(1-ratio*ratio)) / denom
		}
	default:
		for i := range w {
			w[i] = 1
		}
	}
	return w
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// evaluated by its standard series. Needed by the Kaiser window; the
// standard library has no equivalent and none of the example repos carry
// one, so this is a direct numerical-methods implementation rather than a
// dependency.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 32; k++ {
		term *= (halfX / float64(k))
		sum += term * term
	}
	return sum
}

// sinc is the normalized sinc function, sin(pi*x)/(pi*x), with sinc(0)=1.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// DesignLowpass returns `taps` coefficients of a windowed-sinc lowpass
// filter with cutoff fc (Hz) at sample rate fs, normalized to unity DC
// gain (coefficients sum to 1). Mirrors src/dsp.go's gen_lowpass shape:
// ideal sinc times a window, DC-normalized.
func DesignLowpass(taps int, fc, fs float64, kind WindowKind, beta float64) []float64 {
	h := make([]float64, taps)
	w := Window(kind, taps, beta)
	center := float64(taps-1) / 2
	fRatio := 2 * fc / fs
	var sum float64
	for i := 0; i < taps; i++ {
		x := float64(i) - center
		h[i] = fRatio * sinc(fRatio*x) * w[i]
		sum += h[i]
	}
	if sum != 0 {
		for i := range h {
			h[i] /= sum
		}
	}
	return h
}
