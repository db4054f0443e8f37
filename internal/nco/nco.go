// Package nco implements the coherent multi-carrier oscillator: a single
// master phase accumulator emitting exact 1x/2x/3x harmonics from one
// shared sine table, grounded on original_source/NCO.{h,cpp}.
package nco

import "math"

// TableSize is the shared sine table length, a power of two.
const TableSize = 1024

// sineTable is process-wide immutable state initialized once before any
// audio task starts, not per-instance, so every NCO reads the same
// table.
var sineTable [TableSize]float32

func init() {
	for i := 0; i < TableSize; i++ {
		sineTable[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(TableSize)))
	}
}

// lookup samples the shared table at phase p in [0,1) with linear
// interpolation between adjacent entries.
func lookup(p float32) float32 {
	scaled := p * TableSize
	i0 := int(scaled)
	frac := scaled - float32(i0)
	i0 &= TableSize - 1
	i1 := (i0 + 1) & (TableSize - 1)
	return sineTable[i0] + frac*(sineTable[i1]-sineTable[i0])
}

// NCO is the master phase accumulator. Pilot is the nominal pilot
// frequency (19 kHz); the subcarrier and RDS carrier are always exactly
// 2x/3x the pilot frequency by construction, never independently tuned.
type NCO struct {
	phase    float32
	phaseInc float32
}

// New configures the phase increment for a pilot frequency freqHz at
// sample rate fs. Delta-phi = freqHz/fs per sample, an exact rational
// increment so repeated subtraction never accumulates drift beyond
// float rounding.
func New(freqHz, fs float64) *NCO {
	return &NCO{phaseInc: float32(freqHz / fs)}
}

// Reset returns the NCO to its post-construction state (phase 0). Not
// called during normal operation, but available for tests and cold-start
// wiring.
func (o *NCO) Reset() { o.phase = 0 }

// SetPhase sets the phase directly, wrapped to [0,1).
func (o *NCO) SetPhase(p float32) {
	for p >= 1 {
		p -= 1
	}
	for p < 0 {
		p += 1
	}
	o.phase = p
}

func (o *NCO) Phase() float32    { return o.phase }
func (o *NCO) PhaseInc() float32 { return o.phaseInc }

// Generate advances the master phase by one sample per element and writes
// the three coherent carriers: pilot (1x), sub (2x), rds (3x). Any of the
// three output slices may be nil when that carrier isn't needed; n samples
// are still consumed from the phase accumulator either way so phase stays
// continuous across blocks regardless of which carriers the caller wants.
func (o *NCO) Generate(pilot, sub, rds []float32, n int) {
	phase := o.phase
	inc := o.phaseInc
	for i := 0; i < n; i++ {
		p1 := phase
		p2 := phase * 2
		if p2 >= 1 {
			p2 -= 1
		}
		p3 := phase * 3
		for p3 >= 1 {
			p3 -= 1
		}

		if pilot != nil {
			pilot[i] = lookup(p1)
		}
		if sub != nil {
			sub[i] = lookup(p2)
		}
		if rds != nil {
			rds[i] = lookup(p3)
		}

		phase += inc
		if phase >= 1 {
			phase -= 1
		}
	}
	o.phase = phase
}
