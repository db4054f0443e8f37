package dspfilter

// Polyphase upsampler constants, grounded on
// original_source/PolyphaseFIRUpsampler.{h,cpp}: L=4 phases, 96-tap
// prototype, 24 taps per phase.
const (
	UpsampleFactor = 4
	prototypeTaps  = 96
	tapsPerPhase   = prototypeTaps / UpsampleFactor
)

// Upsampler is the polyphase FIR interpolator. Each channel keeps a
// mirrored-wraparound delay line of length 2*tapsPerPhase so every
// convolution reads a contiguous window with no per-tap bounds check,
// exactly as the source's state_L_/state_R_ buffers do.
type Upsampler struct {
	phaseCoeffs [UpsampleFactor][tapsPerPhase]float64
	stateL      [2 * tapsPerPhase]float64
	stateR      [2 * tapsPerPhase]float64
	pos         int // write index into the first half [0,tapsPerPhase)
}

// NewUpsampler designs the prototype lowpass (cutoff fc at the upsampled
// rate fs*UpsampleFactor, typically Fs_in/2 minus a transition margin) and
// decomposes it into UpsampleFactor polyphase sub-filters E_k[j] = h[k+j*L].
func NewUpsampler(fsIn, fc float64) *Upsampler {
	u := &Upsampler{}
	h := DesignLowpass(prototypeTaps, fc, fsIn*float64(UpsampleFactor), WindowKaiser, 7.857)
	// Each polyphase branch must individually sum to ~1 so cascaded with
	// the zero-stuffing implicit in polyphase decomposition the overall
	// prototype sums to L, giving unity DC gain after upsampling.
	var branchSums [UpsampleFactor]float64
	for k := 0; k < UpsampleFactor; k++ {
		for j := 0; j < tapsPerPhase; j++ {
			idx := k + j*UpsampleFactor
			if idx < len(h) {
				u.phaseCoeffs[k][j] = h[idx]
				branchSums[k] += h[idx]
			}
		}
	}
	for k := 0; k < UpsampleFactor; k++ {
		if branchSums[k] == 0 {
			continue
		}
		for j := 0; j < tapsPerPhase; j++ {
			u.phaseCoeffs[k][j] /= branchSums[k]
		}
	}
	return u
}

func (u *Upsampler) Reset() {
	u.stateL = [2 * tapsPerPhase]float64{}
	u.stateR = [2 * tapsPerPhase]float64{}
	u.pos = 0
}

// Process upsamples nIn interleaved stereo frames from in into
// nIn*UpsampleFactor interleaved stereo frames in out.
func (u *Upsampler) Process(in []float32, out []float32, nIn int) {
	for n := 0; n < nIn; n++ {
		l := float64(in[2*n])
		r := float64(in[2*n+1])

		// Mirrored wraparound write: store at pos and pos+tapsPerPhase so
		// every phase's convolution reads tapsPerPhase contiguous values
		// starting at pos without wrapping mid-window.
		u.stateL[u.pos] = l
		u.stateL[u.pos+tapsPerPhase] = l
		u.stateR[u.pos] = r
		u.stateR[u.pos+tapsPerPhase] = r

		for k := 0; k < UpsampleFactor; k++ {
			var accL, accR float64
			coeffs := &u.phaseCoeffs[k]
			for j := 0; j < tapsPerPhase; j++ {
				accL += coeffs[j] * u.stateL[u.pos+j]
				accR += coeffs[j] * u.stateR[u.pos+j]
			}
			outIdx := n*UpsampleFactor + k
			out[2*outIdx] = float32(accL)
			out[2*outIdx+1] = float32(accR)
		}

		u.pos--
		if u.pos < 0 {
			u.pos = tapsPerPhase - 1
		}
	}
}
