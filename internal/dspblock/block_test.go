package dspblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	in := []WireFrame{{L: FullScale / 2, R: -FullScale / 2}}
	real := make([]float32, 2)
	Decode(in, real)
	assert.InDelta(t, 0.5, real[0], 1e-6)
	assert.InDelta(t, -0.5, real[1], 1e-6)

	out := make([]WireFrame, 1)
	Encode(real, out)
	assert.InDelta(t, in[0].L, out[0].L, float64(FullScale)*1e-6)
	assert.InDelta(t, in[0].R, out[0].R, float64(FullScale)*1e-6)
}

func TestEncodeSingleClamp(t *testing.T) {
	in := []float32{2.0, -2.0}
	out := make([]WireFrame, 1)
	Encode(in, out)
	high := float32(clampHigh)
	require.LessOrEqual(t, out[0].L, int32(high*FullScale)+1)
	assert.Equal(t, int32(clampLow*FullScale), out[0].R)
}

func TestChannelMeterRMSAndPeak(t *testing.T) {
	var m ChannelMeter
	m.Add(1.0)
	m.Add(-1.0)
	assert.InDelta(t, 1.0, m.RMS(), 1e-9)
	assert.Equal(t, float32(1.0), m.Peak())
}

func TestDBFSFloorsSilence(t *testing.T) {
	assert.Equal(t, -120.0, DBFS(0))
	assert.InDelta(t, 0.0, DBFS(1.0), 1e-9)
}
