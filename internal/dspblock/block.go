// Package dspblock defines the audio block shapes that flow through the
// pipeline stages and the single clamp-and-encode step that is the only
// place sample values are ever clamped.
package dspblock

import "math"

// WireFrame is one interleaved stereo frame as it appears on the wire: a
// 24-bit sample left-justified in a 32-bit container, matching the
// peripheral contract.
type WireFrame struct {
	L int32
	R int32
}

// FullScale is the magnitude of a 24-bit sample left-justified into the
// top 24 bits of a 32-bit container.
const FullScale = 1 << 31

// clampHigh is the single upper clamp value used at stage 9, keeping the
// output strictly below full scale so no wraparound occurs in the integer
// container.
const clampHigh = 0.9999999
const clampLow = -1.0

// Decode converts one block of wire frames into normalized real samples in
// [-1, +1), writing interleaved [L0,R0,L1,R1,...] into out. out must have
// length >= 2*len(in). This is stage 1's decode half; metering is done by
// the caller via Meter so the two concerns (conversion, accumulation) stay
// separable and testable independently.
func Decode(in []WireFrame, out []float32) {
	for i, f := range in {
		out[2*i] = float32(f.L) / FullScale
		out[2*i+1] = float32(f.R) / FullScale
	}
}

// Encode is stage 9: the single clamp in the entire pipeline, followed by
// conversion back to the wire's integer container. in is interleaved
// [L0,R0,...]; out receives one WireFrame per input frame.
func Encode(in []float32, out []WireFrame) {
	n := len(in) / 2
	for i := 0; i < n; i++ {
		l := clamp(in[2*i])
		r := clamp(in[2*i+1])
		out[i] = WireFrame{
			L: int32(l * FullScale),
			R: int32(r * FullScale),
		}
	}
}

func clamp(x float32) float32 {
	if x > clampHigh {
		return clampHigh
	}
	if x < clampLow {
		return clampLow
	}
	return x
}

// ChannelMeter accumulates sum-of-squares and peak magnitude for one
// channel across a block, the metering half of stage 1.
type ChannelMeter struct {
	sumSq float64
	peak  float32
	count int
}

func (m *ChannelMeter) Reset() { *m = ChannelMeter{} }

func (m *ChannelMeter) Add(x float32) {
	m.sumSq += float64(x) * float64(x)
	if a := float32(math.Abs(float64(x))); a > m.peak {
		m.peak = a
	}
	m.count++
}

// RMS returns the root-mean-square of the accumulated samples, 0 if none.
func (m *ChannelMeter) RMS() float64 {
	if m.count == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.count))
}

func (m *ChannelMeter) Peak() float32 { return m.peak }

// DBFS converts a linear magnitude to decibels relative to full scale.
// Silence maps to a large negative floor rather than -Inf so downstream
// consumers (telemetry JSON, display) never have to special-case it.
func DBFS(linear float64) float64 {
	const floor = -120.0
	if linear <= 0 {
		return floor
	}
	db := 20 * math.Log10(linear)
	if db < floor {
		return floor
	}
	return db
}

// StereoMeter accumulates both channels of one block at once; Stage 1 in
// internal/pipeline owns one of these and resets it every block.
type StereoMeter struct {
	L, R ChannelMeter
}

func (m *StereoMeter) Reset() {
	m.L.Reset()
	m.R.Reset()
}

// AddFrame folds one interleaved L,R pair into the meter.
func (m *StereoMeter) AddFrame(l, r float32) {
	m.L.Add(l)
	m.R.Add(r)
}
