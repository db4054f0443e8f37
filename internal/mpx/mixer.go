// Package mpx implements the MPX mixer, grounded on
// original_source/MPXMixer.{h,cpp}.
package mpx

// Mixer fuses mono, pilot, side, and subcarrier into the composite MPX
// baseband in a single pass. Stateless; pilotAmp and sideAmp are the only
// configuration (a_p, a_s).
type Mixer struct {
	PilotAmp float32
	SideAmp  float32
}

// New builds a mixer with pilot injection pilotAmp (conventionally ~0.09)
// and side-signal DSB-SC amplitude sideAmp.
func New(pilotAmp, sideAmp float32) *Mixer {
	return &Mixer{PilotAmp: pilotAmp, SideAmp: sideAmp}
}

// Process computes out[i] = mono[i] + pilotAmp*pilot[i] + sideAmp*side[i]*sub[i]
// for each of the n samples, matching the source's fused process() loop.
func (m *Mixer) Process(mono, side, pilot, sub, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = mono[i] + m.PilotAmp*pilot[i] + m.SideAmp*side[i]*sub[i]
	}
}
